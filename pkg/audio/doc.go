// Package audio provides audio processing utilities.
//
// This package serves as an umbrella for audio-related sub-packages:
//
//   - decode: container/codec decoding (wav, mp3, flac, ogg) to float32 PCM
//   - pcm: sample format conversion and channel mixdown
//   - resampler: sample-rate conversion
//   - melspec: log-mel spectrogram extraction
//
// Together they form the ingestion front end: a file is decoded to
// interleaved float32 samples, mixed down to mono, resampled to the
// engine rate, and (inside the ONNX encoder) turned into a log-mel
// spectrogram.
package audio
