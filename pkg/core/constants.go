package core

// Container fields the patcher is allowed to change. Fields outside this
// whitelist are never written, even when the live object differs.
const (
	FieldImage        = "image"
	FieldResources    = "resources"
	FieldEnv          = "env"
	FieldVolumeMounts = "volumeMounts"
)

// Resource quantity keys understood by the ResourceSpec shorthand.
const (
	ResourceCPU    = "cpu"
	ResourceMemory = "memory"
)

// Reconciliation outcomes carried in Result and used as metric labels.
const (
	OutcomeUnchanged = "unchanged"
	OutcomePatched   = "patched"
)
