package segment

import "context"

// ReadSegmentRange implements read_segment_range: reads from the given
// version only, starting at the segment containing offset, continuing
// through whole segments until length bytes have been produced or a
// shorter-than-SEG_SIZE segment (end of file) is encountered. A read
// past EOF returns whatever bytes are available, never an error.
func (e *Engine) ReadSegmentRange(ctx context.Context, path string, version int64, offset, length int64) ([]byte, error) {
	if length <= 0 {
		return nil, nil
	}

	startSeg := e.segmentIndex(offset)
	skew := e.intraOffset(offset)

	out := make([]byte, 0, length)
	seg := startSeg

	for int64(len(out)) < length {
		record, err := e.store.GetSegment(ctx, nil, path, version, seg)
		if err != nil {
			break // no more segments: EOF
		}

		content := record.Content
		if seg == startSeg && skew != 0 {
			if skew >= len(content) {
				break
			}
			content = content[skew:]
		}

		want := length - int64(len(out))
		if int64(len(content)) > want {
			content = content[:want]
		}
		out = append(out, content...)

		if len(record.Content) < e.segSize {
			break // short segment: end of file
		}
		seg++
	}

	return out, nil
}
