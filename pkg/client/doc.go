/*
Package client provides a Go client library for a Hub's RPC Surface.

It wraps the four RPCs - RegisterService, UnregisterService,
QueryServices, SubscribeToService - behind a small Client type, each
method opening its own short-lived context rather than requiring the
caller to manage one:

	c, err := client.New("hub.internal:9090")
	if err != nil { ... }
	defer c.Close()

	status, err := c.Register("payments", "10.0.4.12", 8080,
		client.WithGeneratedID(),
		client.WithHealthCheck(&pb.HealthCheck{Endpoint: "/", Interval: 5, Timeout: 2, Retries: 3}),
	)

	events, err := c.Query("payments")

	stream, err := c.Subscribe(ctx, "payments")
	for {
		event, err := stream.Recv()
		if err != nil { break }
		// handle event
	}

Register, Unregister, and Query each complete within a bounded
client-side timeout (ten seconds; the Hub itself applies no server-side
timeout to these RPCs); Subscribe is long-lived and is bounded by the context the caller
passes in, not by the client's internal default.
*/
package client
