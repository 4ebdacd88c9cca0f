package domain

import "errors"

var (
	// ErrInvalidInput indicates a caller supplied an invalid argument or configuration.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDimensionMismatch indicates embeddings of different lengths in one collection.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrEmptyChunk indicates a chunk whose text is empty after trimming.
	ErrEmptyChunk = errors.New("empty chunk text")

	// ErrDuplicateID indicates two chunks sharing an id.
	ErrDuplicateID = errors.New("duplicate chunk id")

	// ErrPositionGap indicates chunk positions of a source that are not 0, 1, 2, ...
	ErrPositionGap = errors.New("chunk positions not consecutive")

	// ErrNoDocuments indicates ingestion found nothing to process.
	ErrNoDocuments = errors.New("no documents found")
)
