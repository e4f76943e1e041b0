package router

import (
	"hash/fnv"
	"strings"

	"github.com/linkmeta/metasite/pkg/core"
)

// extractSlots collects the content of every element carrying a
// data-slot="id" attribute in a single pass. Content without markup is
// returned in textSlots, anything else in htmlSlots. Nested slots are
// skipped: the outer slot already carries them.
func extractSlots(html string) (textSlots, htmlSlots map[string]string) {
	textSlots = make(map[string]string)
	htmlSlots = make(map[string]string)

	const marker = `data-slot="`
	markerLen := len(marker)
	htmlLen := len(html)
	pos := 0

	for pos < htmlLen {
		idx := strings.Index(html[pos:], marker)
		if idx == -1 {
			break
		}

		slotStart := pos + idx + markerLen
		slotEnd := strings.IndexByte(html[slotStart:], '"')
		if slotEnd == -1 {
			pos = slotStart
			continue
		}
		slotID := html[slotStart : slotStart+slotEnd]

		tagStart := pos + idx
		for tagStart > 0 && html[tagStart] != '<' {
			tagStart--
		}

		tagNameEnd := tagStart + 1
		for tagNameEnd < htmlLen && !isTagNameEnd(html[tagNameEnd]) {
			tagNameEnd++
		}
		tagName := html[tagStart+1 : tagNameEnd]

		closeAngle := strings.IndexByte(html[slotStart+slotEnd:], '>')
		if closeAngle == -1 {
			pos = slotStart + slotEnd
			continue
		}
		contentStart := slotStart + slotEnd + closeAngle + 1

		openTag := "<" + tagName
		closeTag := "</" + tagName
		depth := 1
		searchPos := contentStart
		contentEnd := -1

		for depth > 0 && searchPos < htmlLen {
			nextClose := strings.Index(html[searchPos:], closeTag)
			if nextClose == -1 {
				break
			}
			nextClose += searchPos

			nextOpen := strings.Index(html[searchPos:], openTag)
			if nextOpen == -1 {
				nextOpen = htmlLen
			} else {
				nextOpen += searchPos
			}

			if nextOpen < nextClose {
				after := nextOpen + len(openTag)
				if after < htmlLen && isTagNameEnd(html[after]) {
					depth++
				}
				searchPos = after
				continue
			}

			depth--
			if depth == 0 {
				contentEnd = nextClose
			}
			searchPos = nextClose + len(closeTag)
		}

		if contentEnd == -1 {
			pos = contentStart
			continue
		}

		content := strings.TrimSpace(html[contentStart:contentEnd])
		if strings.ContainsAny(content, "<>") {
			htmlSlots[slotID] = content
		} else {
			textSlots[slotID] = content
		}
		pos = searchPos
	}

	return textSlots, htmlSlots
}

func isTagNameEnd(c byte) bool {
	return c == ' ' || c == '>' || c == '/' || c == '\t' || c == '\n'
}

func hashContent(content string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(content))
	return h.Sum64()
}

// buildDiff compares html with the last render of the session and returns
// the slots that changed. Views without slots get a full render whenever
// their HTML changes.
func buildDiff(s *Session, html string) *core.DiffPayload {
	textSlots, htmlSlots := extractSlots(html)
	prevHashes, prevFull := s.slotState()

	payload := &core.DiffPayload{
		Slots:     make(map[string]string),
		HTMLSlots: make(map[string]string),
	}

	if len(textSlots) == 0 && len(htmlSlots) == 0 {
		full := hashContent(html)
		if full != prevFull {
			payload.Full = html
		}
		s.setSlotState(nil, full)
	} else {
		hashes := make(map[string]uint64, len(textSlots)+len(htmlSlots))
		for id, content := range textSlots {
			h := hashContent(content)
			hashes[id] = h
			if prev, ok := prevHashes[id]; !ok || prev != h {
				payload.Slots[id] = content
			}
		}
		for id, content := range htmlSlots {
			h := hashContent(content)
			hashes[id] = h
			if prev, ok := prevHashes[id]; !ok || prev != h {
				payload.HTMLSlots[id] = content
			}
		}
		s.setSlotState(hashes, 0)
	}

	if !payload.IsEmpty() {
		payload.Version = s.nextVersion()
	}
	return payload
}
