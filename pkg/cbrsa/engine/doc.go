// Package engine is a context-aware service layer over the RSA core. It keeps
// derived key pairs in a keyring under random ids, fans batch work out over a
// bounded number of goroutines, and reports every operation to a logger and
// Prometheus metrics.
//
//	eng := engine.New(ctx, engine.WithLogger(logger), engine.WithWorkers(4))
//	id, _, err := eng.Derive(ctx, p, q)
//	cs, err := eng.EncryptBatch(ctx, id, messages)
//	ms, err := eng.DecryptBatch(ctx, id, cs, engine.PathCRT)
//
// Only bit lengths of messages and ciphertexts are logged. Key pairs log
// through their slog.LogValuer, which redacts the private values.
package engine
