package analysis

import (
	"context"
	"sync"
)

type scriptedReply struct {
	text string
	err  error
}

// scriptedClient answers calls from a queue; once exhausted it repeats the last reply.
type scriptedClient struct {
	mu       sync.Mutex
	replies  []scriptedReply
	payloads []string
}

func newScriptedClient(replies ...scriptedReply) *scriptedClient {
	return &scriptedClient{replies: replies}
}

func (c *scriptedClient) Complete(_ context.Context, _, payload string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.payloads = append(c.payloads, payload)
	if len(c.replies) == 0 {
		return "", nil
	}
	r := c.replies[0]
	if len(c.replies) > 1 {
		c.replies = c.replies[1:]
	}
	return r.text, r.err
}

func (c *scriptedClient) calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.payloads)
}
