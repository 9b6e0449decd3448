package cli

import (
	"fmt"
	"io"
	"math/big"
	"time"

	"github.com/roach88/ftr/internal/canon"
	"github.com/roach88/ftr/internal/ftr"
)

// phaseAbbrev is the dumper's short form for an attribute phase.
var phaseAbbrev = map[ftr.Phase]string{
	ftr.PhaseBegin:  "battr",
	ftr.PhaseRecord: "rattr",
	ftr.PhaseEnd:    "eattr",
}

// recordObject is the JSON shape of a record. The "record" key carries the
// kind; stream descriptors use "kind" for their own kind string.
func recordObject(r ftr.Record) canon.Object {
	obj := canon.Object{"record": string(r.Kind())}
	switch rec := r.(type) {
	case ftr.Diagnostic:
		obj["scope"] = string(rec.Scope)
		obj["tag"] = rec.Tag
		obj["offset"] = rec.Offset
		obj["message"] = rec.Message
	case ftr.StreamDescriptor:
		obj["stream_id"] = rec.StreamID
		obj["name"] = rec.Name
		obj["kind"] = rec.Kind
	case ftr.GeneratorDescriptor:
		obj["generator_id"] = rec.GeneratorID
		obj["name"] = rec.Name
		obj["stream_id"] = rec.StreamID
	case ftr.TransactionHeader:
		obj["stream_id"] = rec.StreamID
		obj["id"] = rec.ID
		obj["generator_id"] = rec.GeneratorID
		obj["start_time"] = rec.StartTime
		obj["end_time"] = rec.EndTime
	case ftr.AttributeEvent:
		obj["stream_id"] = rec.StreamID
		obj["tx_id"] = rec.TxID
		obj["phase"] = string(rec.Phase)
		obj["name"] = rec.Name
		obj["type_id"] = uint64(rec.TypeID)
		obj["value"] = rec.Value
	case ftr.Relation:
		obj["name"] = rec.Name
		obj["from"] = rec.From
		obj["to"] = rec.To
	}
	return obj
}

// recordObjects converts records for hashing or JSON output.
func recordObjects(records []ftr.Record) []any {
	out := make([]any, len(records))
	for i, r := range records {
		out[i] = recordObject(r)
	}
	return out
}

// writeText renders one record in the dumper's line format.
func writeText(w io.Writer, r ftr.Record) {
	switch rec := r.(type) {
	case ftr.Diagnostic:
		fmt.Fprintf(w, "warning: %s\n", rec.Message)
	case ftr.StreamDescriptor:
		fmt.Fprintf(w, "stream id:%d, name:%s, kind:%s\n", rec.StreamID, rec.Name, rec.Kind)
	case ftr.GeneratorDescriptor:
		fmt.Fprintf(w, "generator id:%d, name:%s, stream:%d\n", rec.GeneratorID, rec.Name, rec.StreamID)
	case ftr.TransactionHeader:
		fmt.Fprintf(w, "trans id:%d, gen:%d, start:%d, end:%d\n", rec.ID, rec.GeneratorID, rec.StartTime, rec.EndTime)
	case ftr.AttributeEvent:
		fmt.Fprintf(w, "  %s %s, type_id:%d (%s), value:%s\n",
			phaseAbbrev[rec.Phase], rec.Name, uint64(rec.TypeID), rec.TypeID, formatValue(rec.Value))
	case ftr.Relation:
		fmt.Fprintf(w, "relation %s, from:%d, to:%d\n", rec.Name, rec.From, rec.To)
	}
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case []byte:
		return fmt.Sprintf("0x%x", val)
	case string:
		return val
	case big.Int:
		return val.String()
	case time.Time:
		return val.UTC().Format(time.RFC3339Nano)
	}
	return fmt.Sprintf("%v", v)
}

// recordWriter renders decoded files in the configured format. JSON output
// is one canonical object per line, tagged with the file it came from.
type recordWriter struct {
	format string
	w      io.Writer
	errW   io.Writer

	// headers prints a "==> path <==" line before each file in text mode.
	headers bool
	written int
}

func (rw *recordWriter) writeRecords(source string, records []ftr.Record) error {
	if rw.format == "json" {
		for _, r := range records {
			obj := recordObject(r)
			obj["file"] = source
			if err := rw.writeLine(obj); err != nil {
				return err
			}
		}
		rw.written++
		return nil
	}

	rw.header(source)
	for _, r := range records {
		writeText(rw.w, r)
	}
	return nil
}

// writeFailure reports a file that did not decode. In JSON mode the error
// becomes a line of its own so the stream stays parseable.
func (rw *recordWriter) writeFailure(source string, err error) error {
	if rw.format == "json" {
		rw.written++
		return rw.writeLine(canon.Object{
			"file": source,
			"error": canon.Object{
				"code":    errorCode(err),
				"message": err.Error(),
			},
		})
	}
	fmt.Fprintf(rw.errW, "%s: %v\n", source, err)
	return nil
}

func (rw *recordWriter) header(source string) {
	if !rw.headers {
		return
	}
	if rw.written > 0 {
		fmt.Fprintln(rw.w)
	}
	rw.written++
	fmt.Fprintf(rw.w, "==> %s <==\n", source)
}

func (rw *recordWriter) writeLine(obj canon.Object) error {
	data, err := canon.Marshal(obj)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	data = append(data, '\n')
	_, err = rw.w.Write(data)
	return err
}
