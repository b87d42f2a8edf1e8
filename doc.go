package elster

// Package elster provides:
//
// - A forward-only JSON encoder (Streamer) that writes straight to an io.Writer
// - A small declarative API: Key / Add for members and elements, blocks for nesting
// - Object vs array decided per level by the first call, enforced afterwards
// - Consistent bracket bookkeeping even when a nested block fails
//
// Design policy:
// - Keep only public APIs in the root package; put detailed implementations under internal/.
// - Nothing is buffered: each Key/Add call is written to the sink in one Write.
// - The general serializer (go-json by default) is used only for strings that
//   need escaping and for values supplied whole (maps, slices, structs).
// - Place alternative serializers under marshal/ and the CLI under cmd/elster.
//
// Typical usage:
//
//  s := elster.New(w)
//  s.Key("name", "Bobert")
//  s.KeyBlock("children", func(s *elster.Streamer) error {
//      s.Add(1)
//      return s.Add(2)
//  })
//  err := s.Close()
//
//  {"name":"Bobert","children":[1,2]}
//
// A block that writes nothing yields null rather than an empty container. If a
// block returns an error after writing some items, the nested container is
// still closed and the error is returned; the items already written stay in
// the output.
