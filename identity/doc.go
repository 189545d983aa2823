// Package identity resolves the availability zone and instance id of the
// running workload.
//
// Three resolvers are provided:
//
//   - Static reads values captured from the environment at startup.
//   - TaskMetadata queries the ECS container metadata endpoint (v4) with a
//     single, time-bounded GET of <base>/task.
//   - IMDS reads the EC2 instance identity document.
//
// Resolvers never return errors. Any failure to reach or parse the metadata
// source yields Fallback, so callers can always render an identity.
//
// Nothing is cached: every Resolve call reads the source again.
package identity
