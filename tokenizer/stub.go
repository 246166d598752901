package tokenizer

import (
	"fmt"
	"sort"
	"strings"
)

// Stub is a deterministic, dependency-free [Adapter] over a small fixed
// vocabulary: every schema key the caller registers, plus the single-rune
// JSON punctuation and a byte-fallback range for everything else. It is not
// a production BPE tokenizer -- it stands in for the model's tokenizer,
// which this engine consumes as an external collaborator rather than
// implementing, used by this module's own tests, the CLI demo, and the
// watch TUI.
//
// Stub's vocabulary is greedy-longest-match over registered multi-character
// pieces (keys and common JSON fragments), falling back to one token per
// byte. This is sufficient to exercise every rule in [maskhint] and
// [jsonstate] without pulling in a real tokenizer dependency.
type Stub struct {
	pieces    []string // sorted longest-first for greedy matching
	tokenByID map[TokenID]string
	idByPiece map[string]TokenID
	eos       TokenID
	nextID    TokenID
}

// NewStub builds a Stub vocabulary from the given extra multi-character
// pieces (typically schema key strings, so each key encodes to its own
// dedicated token and trie construction is exact). JSON punctuation,
// common whitespace runs, and a byte-fallback range are always included.
func NewStub(extraPieces ...string) *Stub {
	s := &Stub{
		tokenByID: make(map[TokenID]string),
		idByPiece: make(map[string]TokenID),
	}

	// Byte fallback first, so every possible input is representable even
	// if no multi-character piece matches.
	for b := 0; b < 256; b++ {
		s.intern(string([]byte{byte(b)}))
	}

	for _, sym := range []string{`"`, ":", ",", "{", "}", "[", "]", `\`, " ", "\n", "\t"} {
		s.intern(sym)
		s.intern(" " + sym)
		s.intern(sym + " ")
	}

	for _, ws := range []string{"  ", "   ", "\n\n"} {
		s.intern(ws)
	}

	for _, lit := range []string{"true", "false", "null"} {
		s.intern(lit)
		s.intern(" " + lit)
	}

	for _, piece := range extraPieces {
		if piece == "" {
			continue
		}

		s.intern(piece)
		s.intern(`"` + piece + `"`)
	}

	s.eos = s.intern("<|eos|>")

	s.pieces = make([]string, 0, len(s.idByPiece))
	for p := range s.idByPiece {
		s.pieces = append(s.pieces, p)
	}

	sort.Slice(s.pieces, func(i, j int) bool {
		return len(s.pieces[i]) > len(s.pieces[j])
	})

	return s
}

func (s *Stub) intern(piece string) TokenID {
	if id, ok := s.idByPiece[piece]; ok {
		return id
	}

	id := s.nextID
	s.nextID++
	s.idByPiece[piece] = id
	s.tokenByID[id] = piece

	return id
}

// Encode implements [Adapter] with greedy longest-piece matching, falling
// back to one token per byte.
func (s *Stub) Encode(text string) ([]TokenID, error) {
	var out []TokenID

	for len(text) > 0 {
		matched := false

		for _, piece := range s.pieces {
			if piece == "" || len(piece) > len(text) {
				continue
			}

			if strings.HasPrefix(text, piece) {
				out = append(out, s.idByPiece[piece])
				text = text[len(piece):]
				matched = true

				break
			}
		}

		if !matched {
			// Single byte fallback; every byte value was interned in
			// NewStub so this always succeeds.
			out = append(out, s.idByPiece[text[:1]])
			text = text[1:]
		}
	}

	return out, nil
}

// Decode implements [Adapter].
func (s *Stub) Decode(tokens []TokenID) (string, error) {
	var sb strings.Builder

	for _, tok := range tokens {
		piece, err := s.DecodeOne(tok)
		if err != nil {
			return "", err
		}

		sb.WriteString(piece)
	}

	return sb.String(), nil
}

// DecodeOne implements [Adapter]. The EOS token decodes to the empty
// string.
func (s *Stub) DecodeOne(token TokenID) (string, error) {
	if token == s.eos {
		return "", nil
	}

	piece, ok := s.tokenByID[token]
	if !ok {
		return "", fmt.Errorf("tokenizer: unknown token id %d", token)
	}

	return piece, nil
}

// VocabSize implements [VocabSizer].
func (s *Stub) VocabSize() (int, bool) {
	return len(s.tokenByID), true
}

// EOSTokenID implements [EOSProvider].
func (s *Stub) EOSTokenID() (TokenID, bool) {
	return s.eos, true
}

// TokenForPiece returns the TokenID that decodes to exactly piece, if one
// exists in the vocabulary. Useful for tests that want to "type" a specific
// string one piece at a time.
func (s *Stub) TokenForPiece(piece string) (TokenID, bool) {
	id, ok := s.idByPiece[piece]
	return id, ok
}
