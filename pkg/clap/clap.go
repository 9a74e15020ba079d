// Package clap ranks a fixed vocabulary of text tags against audio clips
// by cosine similarity in a shared CLAP embedding space, producing short
// pseudo-captions.
//
// # Architecture
//
// The pipeline processes each clip in five stages:
//
//  1. Ingest: decode the audio file to a mono float32 waveform at 48 kHz
//  2. Embed: obtain one audio vector and one vector per vocabulary tag
//     from an [Encoder]
//  3. Normalize: scale every vector to unit Euclidean norm
//  4. Score: dot product of the audio vector against each tag vector
//  5. Rank: select the top-K tags, ties broken by vocabulary order
//
// Tag vectors depend only on the vocabulary, so an [Engine] computes them
// once and reuses them for every clip in a batch.
//
// The encoder is an opaque capability with exactly two embedding
// primitives. Production encoders run exported ONNX graphs (see
// pkg/clapenc); tests use deterministic stubs. Encoders are obtained
// through a [Cache] which memoizes loads by model identifier.
package clap

// TargetSampleRate is the sample rate the engine feeds to the encoder.
// CLAP models are trained on 48 kHz mono audio.
const TargetSampleRate = 48000

// DefaultTags is the built-in tag vocabulary. The order is significant:
// it is the tie-break order for ranking, and output indices map back to it.
var DefaultTags = []string{
	"speech",
	"male voice",
	"female voice",
	"music",
	"instrumental",
	"drums",
	"guitar",
	"piano",
	"bass",
	"synth",
	"loop",
	"ambient",
	"crowd",
	"applause",
	"footsteps",
	"rain",
	"wind",
	"birdsong",
	"engine",
	"noise",
}

// supportedExts is the set of recognized audio file extensions
// (lowercase, with leading dot).
var supportedExts = map[string]bool{
	".wav":  true,
	".mp3":  true,
	".flac": true,
	".ogg":  true,
	".m4a":  true,
	".webm": true,
}

// ScoredTag is a single (tag, similarity) pair.
type ScoredTag struct {
	Tag   string  `json:"tag"`
	Score float32 `json:"score"`
}

// RankedTags is an ordered list of scored tags, descending by score.
// Equal scores keep vocabulary order.
type RankedTags []ScoredTag

// Tags returns just the tag names, in ranked order.
func (r RankedTags) Tags() []string {
	out := make([]string, len(r))
	for i, st := range r {
		out[i] = st.Tag
	}
	return out
}

// CaptionRecord is the result of captioning one clip. It is the unit
// written to output sinks.
type CaptionRecord struct {
	File    string   `json:"file"`
	Caption string   `json:"caption"`
	Tags    []string `json:"tags"`
	Model   string   `json:"model"`
}
