// Package ballotengine implements the delegated weighted ballot inside the
// governance context.
//
// A ballot owns a fixed proposal registry and a voter registry. The
// chairperson grants voting rights; voters either vote directly or delegate
// their weight along a delegation chain. Domain rules live in domain/services
// and run as a sequential state machine; repositories provide the atomic
// transition boundary and outbox-backed workers relay ballot events.
package ballotengine
