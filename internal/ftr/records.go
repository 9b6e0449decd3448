package ftr

// RecordKind discriminates decoded records.
type RecordKind string

const (
	KindDiagnostic  RecordKind = "diagnostic"
	KindStream      RecordKind = "stream"
	KindGenerator   RecordKind = "generator"
	KindTransaction RecordKind = "transaction"
	KindAttribute   RecordKind = "attribute"
	KindRelation    RecordKind = "relation"
)

// Record is one decoded output record. String ids are already resolved.
type Record interface {
	Kind() RecordKind
}

// DiagnosticScope tells which dispatcher produced a diagnostic.
type DiagnosticScope string

const (
	ScopeChunk DiagnosticScope = "chunk"
	ScopeEntry DiagnosticScope = "entry"
)

// Diagnostic reports an unrecognised tag. It never stops decoding.
type Diagnostic struct {
	Scope   DiagnosticScope `json:"scope"`
	Tag     uint64          `json:"tag"`
	Offset  int64           `json:"offset"`
	Message string          `json:"message"`
}

// StreamDescriptor describes a logical stream (a transaction fiber).
type StreamDescriptor struct {
	StreamID uint64 `json:"stream_id"`
	Name     string `json:"name"`
	Kind     string `json:"kind"`
}

// GeneratorDescriptor describes a transaction generator bound to a stream.
type GeneratorDescriptor struct {
	GeneratorID uint64 `json:"generator_id"`
	Name        string `json:"name"`
	StreamID    uint64 `json:"stream_id"`
}

// TransactionHeader opens a transaction inside a transaction chunk.
type TransactionHeader struct {
	StreamID    uint64 `json:"stream_id"`
	ID          uint64 `json:"id"`
	GeneratorID uint64 `json:"generator_id"`
	StartTime   uint64 `json:"start_time"`
	EndTime     uint64 `json:"end_time"`
}

// AttributeEvent is a begin, record or end attribute of a transaction.
//
// Value is a resolved string when TypeID.IsStringRef, otherwise the scalar
// exactly as decoded (uint64, int64, float64, bool, string or []byte).
type AttributeEvent struct {
	StreamID uint64 `json:"stream_id"`
	TxID     uint64 `json:"tx_id"`
	Phase    Phase  `json:"phase"`
	Name     string `json:"name"`
	TypeID   TypeID `json:"type_id"`
	Value    any    `json:"value"`
}

// Relation links two transactions by a named relation.
type Relation struct {
	Name string `json:"name"`
	From uint64 `json:"from"`
	To   uint64 `json:"to"`
}

func (Diagnostic) Kind() RecordKind          { return KindDiagnostic }
func (StreamDescriptor) Kind() RecordKind    { return KindStream }
func (GeneratorDescriptor) Kind() RecordKind { return KindGenerator }
func (TransactionHeader) Kind() RecordKind   { return KindTransaction }
func (AttributeEvent) Kind() RecordKind      { return KindAttribute }
func (Relation) Kind() RecordKind            { return KindRelation }
