// Package clip provides a client for an OpenAI-compatible embeddings
// endpoint serving a CLIP model.
//
// Text labels and images are embedded into the same vector space, which is
// what lets the classifier rank labels by cosine similarity. Images are
// prepared by media/preview and sent as base64 JPEG data URLs with the
// "image" modality; text goes out as a plain input batch.
//
// # Entry Points
//
// NewClient: construct a client from Config.
// Client.EmbedTexts: embed a batch of labels, returned in input order.
// Client.EmbedImage: embed one image file.
// Client.HealthCheck: embed a single label to verify the endpoint and model.
//
// # Retry Behaviour
//
// The client retries on HTTP 408/429/5xx errors and network timeouts with
// exponential backoff (base 1s, max 10s, up to 5 attempts by default),
// honoring Retry-After. Context cancellation aborts retries immediately.
// When a request rate is configured every attempt waits on a token bucket.
package clip
