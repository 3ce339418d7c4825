// Package anthropic provides Claude-backed collaborators: a field extractor
// that reads the requester's utterances and an opening-script writer.
package anthropic
