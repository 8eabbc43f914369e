/*
Package domain contains the core types of the funnel engine: scene and
choice definitions, the path vocabulary, session state, durable snapshots,
analytics events and the records mirrored to the remote collaborator.

Types here are pure data. Behavior (navigation, scoring, persistence) lives
in the engine packages; adapters translate these types to their transports.
*/
package domain
