// SPDX-License-Identifier: MPL-2.0

// Package launch selects and starts the variant's entrypoint process.
//
// The launcher owns the listening port for the process lifetime: it
// preflights the bind before handing the configured port to the service,
// then replaces the current process image with the entrypoint on platforms
// that support exec. On success control never returns to the provisioning
// pipeline.
package launch
