// Package runway provides an in-process client for the runway token ledger,
// backed by Redis, Valkey or an in-memory store.
//
// The ledger keeps a token balance, a transaction history and the set of
// completed steps. AI features cost tokens; completing a step earns a one-time
// reward.
//
//	client, _ := runway.New(ctx, runway.WithRedis("localhost:6379", ""))
//	defer client.Close()
//
//	if client.HasEnoughTokens(runway.FeatureResearchAnalysis) {
//	    // run the analysis, then charge for it
//	    client.SpendTokensForAI(ctx, runway.FeatureResearchAnalysis)
//	}
//	client.EarnTokensForStep(ctx, runway.StepHomebaseStartupInfo)
//
//	stop := client.Subscribe(func(s runway.State) {
//	    fmt.Println("balance:", s.Balance)
//	})
//	defer stop()
package runway
