// Package pathwise provides an embeddable Go client for career, course and
// college search backed by a chat-completion model.
//
// The client runs the same pipeline as the HTTP service in process: per-client
// rate limiting, input validation, prompt construction, a single model call,
// defensive reply parsing and per-field normalization.
//
//	client, _ := pathwise.New(ctx,
//	    pathwise.WithOpenAI(os.Getenv("OPENAI_API_KEY")),
//	    pathwise.WithRateLimit(10, time.Minute),
//	)
//	defer client.Close()
//
//	res, err := client.Careers(ctx, "user-42", "data science")
//	if errors.Is(err, pathwise.ErrRateLimited) {
//	    // back off
//	}
//	for _, c := range res.Items {
//	    fmt.Println(c.Title, c.Salary)
//	}
//
// Pass WithRedis to share rate windows and token budgets between processes.
package pathwise
