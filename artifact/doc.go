// Package artifact models transformed external artifact sets and their
// snapshot round trip.
//
// A transformed external artifact set is the resolved form of one external
// component's files for one variant: the owning component, the variant
// attributes the resolution targeted, the files themselves, and the chain
// of transform steps that produced them. During a build these sets are
// live (TransformedSet): their files come from a resolution engine and
// visiting them may trigger downloads and transform executions. After a
// snapshot round trip they are replayed (FixedSet): the files were
// captured eagerly at encode time and visiting them touches nothing but
// the captured list.
//
// # Capability parity
//
// Both forms implement Set. Code consuming owner, attributes, steps, or
// artifacts cannot tell them apart; a replayed set is a drop-in stand-in
// for the live set it snapshots. The Resolvable surface is where replay
// narrows: a FixedSet answers Visit and VisitExternalArtifacts exactly
// like a live set, but VisitDependencies and VisitLocalArtifacts fail with
// ErrReplayUnsupported, because the inputs those modes need (upstream
// component bindings, project-local production) are deliberately not
// persisted.
//
// # Persistence
//
// SetCodec is the codec for both forms. Encoding drains the live set
// completely, so every artifact file is captured before the snapshot is
// written, and unpacks each bound transform step into its serializable
// StepSpec. Decoding recreates steps from their specs (a pure function of
// the spec) and assembles a FixedSet. The codec runs under the session's
// shared-identity table: a set referenced from many points in the state
// graph is written once, and every reference decodes to the same FixedSet
// instance.
//
//	reg := codec.NewRegistry()
//	if err := artifact.RegisterSetCodec(reg); err != nil {
//		return err
//	}
//
// The work a live set defers to the build's execution engine travels
// through OperationQueue. Replay paths and tests use SerialQueue, which
// runs submissions inline; a FixedSet schedules nothing on it.
package artifact
