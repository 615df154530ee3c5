package protocol

import "bytes"

// TODO: Optimize memory at some point, it is not a great idea to keep
// reslicing the carry buffer on every fed chunk. But it needs to stay
// correct first, probably a ring buffer makes sense.

// LineReassembler buffers partial lines across arbitrary chunk boundaries so
// a payload is never decoded until its line is complete. No line is ever
// parsed twice and no line is ever dropped, regardless of where the
// transport split the bytes.
type LineReassembler struct {
	carry []byte
}

// Feed appends a raw chunk to the carry-over buffer and returns all complete
// lines. The trailing fragment, if any, is retained for the next call.
func (r *LineReassembler) Feed(chunk []byte) []string {
	r.carry = append(r.carry, chunk...)

	var lines []string
	for {
		newline := bytes.IndexByte(r.carry, '\n')
		if newline < 0 {
			break
		}
		line := r.carry[:newline]
		line = bytes.TrimSuffix(line, []byte("\r"))
		lines = append(lines, string(line))
		r.carry = r.carry[newline+1:]
	}

	return lines
}

// Flush returns the retained fragment as a final complete line at stream
// end. The second return is false when nothing was pending.
func (r *LineReassembler) Flush() (string, bool) {
	if len(r.carry) == 0 {
		return "", false
	}

	line := string(bytes.TrimSuffix(r.carry, []byte("\r")))
	r.carry = r.carry[:0]
	return line, true
}
