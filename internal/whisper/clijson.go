package whisper

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/fmueller/vidscribe/internal/transcript"
)

// whisper-cli -ojf output. Token text is kept raw because multi-byte
// characters may be split across tokens.
type cliOutput struct {
	Result struct {
		Language string `json:"language"`
	} `json:"result"`
	Transcription []cliSegment `json:"transcription"`
}

type cliSegment struct {
	Offsets cliOffsets      `json:"offsets"`
	Text    json.RawMessage `json:"text"`
	Tokens  []cliToken      `json:"tokens"`
}

type cliToken struct {
	Text    json.RawMessage `json:"text"`
	Offsets cliOffsets      `json:"offsets"`
	P       float64         `json:"p"`
}

type cliOffsets struct {
	From int64 `json:"from"`
	To   int64 `json:"to"`
}

func decodeCLIOutput(content []byte) (transcript.Result, error) {
	var out cliOutput
	if err := json.Unmarshal(content, &out); err != nil {
		return transcript.Result{}, fmt.Errorf("decode whisper output: %w", err)
	}

	res := transcript.Result{
		Language: out.Result.Language,
		Segments: make([]transcript.Segment, 0, len(out.Transcription)),
	}

	var full strings.Builder
	for i, seg := range out.Transcription {
		text, err := rawString(seg.Text)
		if err != nil {
			return transcript.Result{}, fmt.Errorf("decode segment %d text: %w", i, err)
		}
		words, err := groupWords(seg.Tokens)
		if err != nil {
			return transcript.Result{}, fmt.Errorf("decode segment %d tokens: %w", i, err)
		}

		text = strings.ToValidUTF8(text, "")
		full.WriteString(text)
		res.Segments = append(res.Segments, transcript.Segment{
			ID:    i,
			Start: millis(seg.Offsets.From),
			End:   millis(seg.Offsets.To),
			Text:  text,
			Words: words,
		})
	}
	res.Text = full.String()

	return res, nil
}

type wordAcc struct {
	text  []byte
	from  int64
	to    int64
	pSum  float64
	count int
}

func (w *wordAcc) word() transcript.Word {
	return transcript.Word{
		Word:        strings.ToValidUTF8(string(w.text), ""),
		Start:       millis(w.from),
		End:         millis(w.to),
		Probability: w.pSum / float64(w.count),
	}
}

// groupWords merges sub-word tokens into words. A token starting with a space
// opens a new word; special tokens such as [_BEG_] or [_TT_42] are skipped.
func groupWords(tokens []cliToken) ([]transcript.Word, error) {
	words := []transcript.Word{}
	var cur *wordAcc

	for _, tok := range tokens {
		text, err := rawString(tok.Text)
		if err != nil {
			return nil, err
		}
		if text == "" || isSpecialToken(text) {
			continue
		}

		if cur == nil || strings.HasPrefix(text, " ") {
			if cur != nil {
				words = append(words, cur.word())
			}
			cur = &wordAcc{from: tok.Offsets.From}
		}

		cur.text = append(cur.text, text...)
		cur.to = tok.Offsets.To
		cur.pSum += tok.P
		cur.count++
	}

	if cur != nil {
		words = append(words, cur.word())
	}
	return words, nil
}

func isSpecialToken(text string) bool {
	return strings.HasPrefix(text, "[_") && strings.HasSuffix(text, "]")
}

func millis(ms int64) float64 {
	return float64(ms) / 1000
}

// rawString unquotes a JSON string without replacing invalid UTF-8, so byte
// fragments of one character can be joined back together.
func rawString(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}
	if len(raw) < 2 || raw[0] != '"' || raw[len(raw)-1] != '"' {
		return "", fmt.Errorf("expected JSON string, got %s", raw)
	}

	body := raw[1 : len(raw)-1]
	out := make([]byte, 0, len(body))
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' {
			out = append(out, c)
			continue
		}

		i++
		if i >= len(body) {
			return "", fmt.Errorf("truncated escape in %s", raw)
		}
		switch body[i] {
		case '"', '\\', '/':
			out = append(out, body[i])
		case 'b':
			out = append(out, '\b')
		case 'f':
			out = append(out, '\f')
		case 'n':
			out = append(out, '\n')
		case 'r':
			out = append(out, '\r')
		case 't':
			out = append(out, '\t')
		case 'u':
			if i+4 >= len(body) {
				return "", fmt.Errorf("truncated unicode escape in %s", raw)
			}
			code, err := strconv.ParseUint(string(body[i+1:i+5]), 16, 32)
			if err != nil {
				return "", fmt.Errorf("invalid unicode escape in %s: %w", raw, err)
			}
			r := rune(code)
			i += 4
			if utf16.IsSurrogate(r) && i+6 < len(body) && body[i+1] == '\\' && body[i+2] == 'u' {
				if low, err := strconv.ParseUint(string(body[i+3:i+7]), 16, 32); err == nil {
					if pair := utf16.DecodeRune(r, rune(low)); pair != utf8.RuneError {
						r = pair
						i += 6
					}
				}
			}
			out = utf8.AppendRune(out, r)
		default:
			return "", fmt.Errorf("invalid escape \\%c in %s", body[i], raw)
		}
	}

	return string(out), nil
}
