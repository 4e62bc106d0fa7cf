// Package bencode implements bencode, the binary serialization format used
// by BitTorrent metainfo files and peer-exchange protocols.
//
// Decode and Encode operate on Value, a closed tagged union of the four
// bencode kinds plus Precomputed, an encoder-only escape hatch for
// splicing an already-encoded fragment verbatim. FromGo/ToGo and the
// Marshal convenience bridge Value to native Go types for callers that
// would rather work with maps, slices, and builtin numeric types.
package bencode
