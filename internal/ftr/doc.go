// Package ftr decodes FTR transaction recording files.
//
// An FTR file is a CBOR container holding a sequence of tagged chunks. Some
// chunks are LZ4 block compressed, and the payload of directory and
// transaction chunks is itself a CBOR stream with its own tag vocabulary.
//
// Decoding is organised as two dispatchers sharing one visitor mechanism
// (cbortree.Hook):
//
//   - the chunk dispatcher interprets OuterTag values at the top level
//     (dictionary, directory, transactions, relations, stream and generator
//     descriptors, info);
//   - the entry dispatcher interprets InnerTag values inside transaction
//     chunks (transaction headers, begin/record/end attribute events) and
//     descriptor tags nested in directory chunks.
//
// # String dictionary
//
// Names are stored once in dictionary chunks and referenced by integer id.
// Dictionary chunks must precede any chunk that references their ids; a
// reference to an id not yet defined is a fatal UNKNOWN_STRING_ID error.
// A repeated id overwrites the earlier value.
//
// # Sessions
//
// Each call to Decode or DecodeFile runs one session with its own
// dictionary. A session is sequential and all-or-nothing: on the first
// fatal error no records are returned. Unknown tags are reported as
// Diagnostic records and never stop the decode. DecodeFiles runs
// independent sessions in parallel.
package ftr
