package device

import (
	"strings"

	"github.com/smallnest/ringbuffer"
)

// DiagnosticsID is the element id the transcript is shown under.
const DiagnosticsID = "device-detect-info"

const diagnosticsLimit = 2048

// Diagnostics renders the mobile detection transcript. The transcript is
// bounded; lines that do not fit are cut.
func Diagnostics(s Snapshot, c Classification) string {
	rb := ringbuffer.New(diagnosticsLimit)

	writeLine(rb, "UserAgent: "+s.UserAgent)
	writeLine(rb, "\nPlatform: "+s.Platform)
	writeLine(rb, "\nARCH DETECTED: "+c.Architecture)

	if rb.Length() == 0 {
		return ""
	}
	out := make([]byte, rb.Length())
	n, _ := rb.Read(out)
	return strings.ToValidUTF8(string(out[:n]), "")
}

func writeLine(rb *ringbuffer.RingBuffer, line string) {
	free := rb.Free()
	if free == 0 {
		return
	}
	if len(line) > free {
		line = line[:free]
	}
	_, _ = rb.WriteString(line)
}
