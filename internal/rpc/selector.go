package rpc

import "context"

// SelectBest picks the best node URL from the provided list using the named
// algorithm.
//
// Returns ErrNoHealthyRPC when the list is empty or all endpoints fail, and
// ErrUnknownAlgorithm for a name ParseAlgorithm rejects.
func SelectBest(ctx context.Context, urls []string, algorithm string) (string, error) {
	if len(urls) == 0 {
		return "", ErrNoHealthyRPC
	}
	if len(urls) == 1 {
		return urls[0], nil
	}
	algo, err := ParseAlgorithm(algorithm)
	if err != nil {
		return "", err
	}
	return Best(ctx, urls, algo)
}
