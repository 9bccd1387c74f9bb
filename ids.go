package main

import "github.com/google/uuid"

// idGenerator produces unique string identifiers for frames and nodes.
type idGenerator func() string

func uuidV7() idGenerator {
	return func() string {
		return uuid.Must(uuid.NewV7()).String()
	}
}

func prefixed(prefix string, gen idGenerator) idGenerator {
	return func() string {
		return prefix + gen()
	}
}

var (
	newNodeID  = prefixed("node-", uuidV7())
	newFrameID = prefixed("frame-", uuidV7())
)
