package format

import (
	"io"

	"github.com/scangrep/scangrep/internal/pipeline"
)

// Emit writes buffers (already sorted into display-key order by
// pipeline.Run) to w, one after another with no separator between files:
// grep does not print "--" at file boundaries, only between non-adjacent
// context groups within one file, which formatPlain already bakes into
// Data as it builds each buffer. Match highlighting inside each buffer's
// Data is already baked in as raw SGR escapes, since GREP_COLORS allows
// arbitrary parameter strings a fixed terminal-color enum couldn't express.
func Emit(w io.Writer, buffers []pipeline.OutputBuffer, colorize bool) (matched int, err error) {
	for _, ob := range buffers {
		if ob.Err != nil {
			continue
		}
		if _, werr := w.Write(ob.Data); werr != nil {
			return matched, werr
		}
		matched += ob.MatchCount
	}
	return matched, nil
}
