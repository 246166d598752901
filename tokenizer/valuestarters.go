package tokenizer

// ValueStarters names the token classes that can legally begin a JSON value
// of each primitive shape, discovered by [DiscoverValueStarters] and
// consulted by the mask hint generator to allow value-starter tokens
// consistent with the expected value schema.
//
// Unlike [SpecialSet]'s punctuation classes -- which probe single
// characters -- literal and numeric starters are discovered from the first
// token of encoding a representative full value, since a byte-pair
// tokenizer's first piece of "true" need not be (and rarely is) a
// single-character "t" token.
type ValueStarters struct {
	Number []TokenID // first token of encoding a number starting 0-9 or '-'
	True   []TokenID // first token of encoding "true"
	False  []TokenID // first token of encoding "false"
	Null   []TokenID // first token of encoding "null"
}

// All returns every TokenID across every class.
func (v ValueStarters) All() []TokenID {
	out := make([]TokenID, 0, len(v.Number)+len(v.True)+len(v.False)+len(v.Null))
	out = append(out, v.Number...)
	out = append(out, v.True...)
	out = append(out, v.False...)
	out = append(out, v.Null...)

	return out
}

var numberLeads = []string{"0", "1", "2", "3", "4", "5", "6", "7", "8", "9", "-1", "-9"}

// DiscoverValueStarters probes a representative sample of number and
// literal encodings and records the first token ID of each: encode a
// probe and keep the first token of its encoding, without decoding it.
func DiscoverValueStarters(a Adapter) (ValueStarters, error) {
	number, err := firstTokens(a, numberLeads)
	if err != nil {
		return ValueStarters{}, err
	}

	trueTok, err := firstTokens(a, []string{"true"})
	if err != nil {
		return ValueStarters{}, err
	}

	falseTok, err := firstTokens(a, []string{"false"})
	if err != nil {
		return ValueStarters{}, err
	}

	nullTok, err := firstTokens(a, []string{"null"})
	if err != nil {
		return ValueStarters{}, err
	}

	return ValueStarters{Number: number, True: trueTok, False: falseTok, Null: nullTok}, nil
}

func firstTokens(a Adapter, probes []string) ([]TokenID, error) {
	seen := make(map[TokenID]bool)

	var out []TokenID

	for _, probe := range probes {
		ids, err := a.Encode(probe)
		if err != nil {
			return nil, err
		}

		if len(ids) == 0 {
			continue
		}

		first := ids[0]
		if seen[first] {
			continue
		}

		seen[first] = true
		out = append(out, first)
	}

	return out, nil
}
