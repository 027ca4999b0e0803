package tokenizer

const negInf = -1e9

// EncodeIDs returns HuggingFace-compatible token IDs for the input text.
func (t *Tokenizer) EncodeIDs(text string) []int32 {
	tokens := t.Encode(text)
	ids := make([]int32, len(tokens))
	for i, tok := range tokens {
		ids[i] = tok.ID
	}
	return ids
}

// EncodeForModel returns the model input for a single sentence: at most
// maxLen content tokens wrapped in <s> and </s>. maxLen <= 0 disables
// truncation.
func (t *Tokenizer) EncodeForModel(text string, maxLen int) []int32 {
	ids := t.EncodeIDs(text)
	if maxLen > 0 && len(ids) > maxLen {
		ids = ids[:maxLen]
	}

	out := make([]int32, 0, len(ids)+2)
	out = append(out, t.bosID)
	out = append(out, ids...)
	out = append(out, t.eosID)
	return out
}

// Encode tokenizes text using Viterbi algorithm, returning tokens with offsets.
func (t *Tokenizer) Encode(text string) []TokenInfo {
	if text == "" {
		return nil
	}

	// Normalize text (NFKC, add ▁ prefix, replace spaces)
	normalized := normalize(text)
	if normalized == "" {
		return nil
	}

	runes := []rune(normalized)
	n := len(runes)

	// best[i] = best log probability to tokenize runes[0:i]
	best := make([]float64, n+1)
	// parent[i] = start position of the token ending at position i
	parent := make([]int, n+1)
	// tokenAt[i] = the token string ending at position i
	tokenAt := make([]string, n+1)
	// unknown[i] = the token ending at i is an <unk> fallback
	unknown := make([]bool, n+1)

	for i := 1; i <= n; i++ {
		best[i] = negInf
		parent[i] = -1
	}

	for i := 1; i <= n; i++ {
		maxLen := t.maxTokenLen
		if maxLen > i {
			maxLen = i
		}

		for length := 1; length <= maxLen; length++ {
			j := i - length
			if best[j] == negInf {
				continue
			}
			substr := string(runes[j:i])

			score, exists := t.scores[substr]
			if !exists {
				continue
			}

			candidate := best[j] + float64(score)
			if candidate > best[i] {
				best[i] = candidate
				parent[i] = j
				tokenAt[i] = substr
				unknown[i] = false
			}
		}

		// No piece ends here: fall back to <unk> for a single rune.
		if best[i] == negInf {
			best[i] = best[i-1] + float64(t.unkScore)
			parent[i] = i - 1
			tokenAt[i] = string(runes[i-1 : i])
			unknown[i] = true
		}
	}

	var tokens []TokenInfo
	pos := n
	for pos > 0 {
		start := parent[pos]
		tokenStr := tokenAt[pos]

		id := t.unkID
		if !unknown[pos] {
			id = t.spIndexToHFID(t.pieces[tokenStr])
		}

		tokens = append(tokens, TokenInfo{
			ID:    id,
			Text:  tokenStr,
			Start: start,
			End:   pos,
		})
		pos = start
	}

	for i, j := 0, len(tokens)-1; i < j; i, j = i+1, j-1 {
		tokens[i], tokens[j] = tokens[j], tokens[i]
	}

	return tokens
}
