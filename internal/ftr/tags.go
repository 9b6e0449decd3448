package ftr

import "fmt"

// OuterTag is a top-level chunk tag.
type OuterTag uint64

const (
	ChunkInfo                   OuterTag = 6
	ChunkDictionary             OuterTag = 8
	ChunkDictionaryCompressed   OuterTag = 9
	ChunkDirectory              OuterTag = 10
	ChunkDirectoryCompressed    OuterTag = 11
	ChunkTransactions           OuterTag = 12
	ChunkTransactionsCompressed OuterTag = 13
	ChunkRelations              OuterTag = 14
	ChunkRelationsCompressed    OuterTag = 15
	ChunkStream                 OuterTag = 16
	ChunkGenerator              OuterTag = 17
)

var outerTagNames = map[OuterTag]string{
	ChunkInfo:                   "info",
	ChunkDictionary:             "dictionary",
	ChunkDictionaryCompressed:   "dictionary (lz4)",
	ChunkDirectory:              "directory",
	ChunkDirectoryCompressed:    "directory (lz4)",
	ChunkTransactions:           "transactions",
	ChunkTransactionsCompressed: "transactions (lz4)",
	ChunkRelations:              "relations",
	ChunkRelationsCompressed:    "relations (lz4)",
	ChunkStream:                 "stream",
	ChunkGenerator:              "generator",
}

func (t OuterTag) String() string {
	if name, ok := outerTagNames[t]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", uint64(t))
}

// Known reports whether t belongs to the chunk vocabulary.
func (t OuterTag) Known() bool {
	_, ok := outerTagNames[t]
	return ok
}

// InnerTag is an entry tag inside a transaction chunk.
type InnerTag uint64

const (
	EntryTransaction     InnerTag = 6
	EntryBeginAttribute  InnerTag = 7
	EntryRecordAttribute InnerTag = 8
	EntryEndAttribute    InnerTag = 9
)

func (t InnerTag) String() string {
	switch t {
	case EntryTransaction:
		return "transaction"
	case EntryBeginAttribute:
		return "begin attribute"
	case EntryRecordAttribute:
		return "record attribute"
	case EntryEndAttribute:
		return "end attribute"
	}
	return fmt.Sprintf("unknown(%d)", uint64(t))
}

// Phase is the point in a transaction's life at which an attribute was
// recorded.
type Phase string

const (
	PhaseBegin  Phase = "begin"
	PhaseRecord Phase = "record"
	PhaseEnd    Phase = "end"
)

// TypeID is the data type of an attribute value as recorded by the writer.
type TypeID uint64

const (
	TypeBoolean TypeID = iota
	TypeEnumeration
	TypeInteger
	TypeUnsigned
	TypeFloatingPoint
	TypeBitVector
	TypeLogicVector
	TypeFixedPoint
	TypeUnsignedFixedPoint
	TypeRecord
	TypePointer
	TypeArray
	TypeString
)

var typeNames = [...]string{
	TypeBoolean:            "boolean",
	TypeEnumeration:        "enumeration",
	TypeInteger:            "integer",
	TypeUnsigned:           "unsigned",
	TypeFloatingPoint:      "floating point",
	TypeBitVector:          "bit vector",
	TypeLogicVector:        "logic vector",
	TypeFixedPoint:         "fixed point integer",
	TypeUnsignedFixedPoint: "unsigned fixed point integer",
	TypeRecord:             "record",
	TypePointer:            "pointer",
	TypeArray:              "array",
	TypeString:             "string",
}

func (t TypeID) String() string {
	if uint64(t) < uint64(len(typeNames)) {
		return typeNames[t]
	}
	return fmt.Sprintf("type(%d)", uint64(t))
}

// IsStringRef reports whether values of this type are dictionary ids.
func (t TypeID) IsStringRef() bool {
	return t == TypeEnumeration || t == TypeString
}
