// Package core defines the Job model, its state machine, the Storage
// contract, and the error taxonomy shared by every other queuectl package.
//
// A job moves through a closed set of states:
//
//	pending ──claim──▶ processing ──success──▶ completed
//	   ▲                   │
//	   │◀──retryable fail──┤
//	   │◀──lease expiry────┤
//	   │                   └──budget exhausted──▶ dead
//	   └──────────DLQ retry──────────────────────┘
//
// There is no lasting "failed" state: a retryable failure returns the job to
// pending gated by NextAttemptAt.
package core
