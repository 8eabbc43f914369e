/*
Package ports defines the interfaces between the funnel engine core and its
adapters: content sources, snapshot stores, remote record writers, analytics
collectors and distributed lockers.

The engine depends only on these interfaces; concrete transports live under
pkg/adapters.
*/
package ports
