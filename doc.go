// Package intent provides:
//
// - Descriptor, a self-describing addressing record naming a target component,
//   an action, data, categories and a typed payload (extras)
// - FillIn, a gap-filling merge reporting the changed fields as a FillInMask
// - FilterEquals/FilterHashCode, a reduced-field equivalence used for
//   deduplication, with FilterKey and FilterSet built on top of it
// - A Codec abstraction implemented by the binary (parcel), canonical URI
//   (uriform) and YAML/JSON (document) subpackages
//
// Design policy:
// - Keep the model and its pure operations in the root package; put encodings
//   under parcel/, uriform/ and document/, and the CLI under cmd/intent.
// - Descriptors own their nested values. Clone, FillIn and every setter taking a
//   nested Descriptor copy it deeply; nothing is shared between two descriptors.
// - A Descriptor is not safe for concurrent mutation.
//
// Typical usage:
//
//	d := intent.NewView(intent.ActionView, intent.ParseURI("https://example.com"))
//	d.AddCategory(intent.CategoryDefault)
//	d.PutExtra("count", intent.Int(42))
//
//	wire, err := parcel.Marshal(d)
//	back, err := parcel.Unmarshal(wire)
//	s := uriform.ToURI(d, 0)
package intent
