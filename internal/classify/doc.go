// Package classify ranks candidate labels against an image by embedding
// similarity.
//
// Classifier.Rank sorts a vocabulary by score (ties keep vocabulary order)
// and accepts at most topK labels scoring strictly above a threshold. Scores
// come from a Scorer; EmbeddingScorer computes cosine similarity between an
// image embedding and label embeddings produced by an Embedder such as the
// CLIP HTTP client.
package classify
