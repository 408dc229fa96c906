// Package runner hosts the workers that execute refresh jobs in the
// background.  Every worker consumes jobs from the queue owned by the engine
// façade, fans the job's items out onto a shared task group and settles the
// transaction with exactly one terminal write once every sub-task joined.
package runner
