/*
Package funnel is a deterministic branching-scene engine for interactive
marketing funnels: a visitor walks an authored scene graph, every choice
contributes weighted scores toward a set of paths, and the highest-scoring
path decides where the funnel lands them.

# Concept

Content is an authored document: an entry scene, a path vocabulary and a
graph of scenes with weighted choices. The engine owns session state and
scoring; the host owns I/O. Persistence, remote sync and analytics are
fire-and-forget adapters behind ports, so a dead backend can never block or
break a playthrough. This hexagonal layout lets the same engine sit behind a
CLI, an HTTP server or an AI agent.

# Key Features

  - Deterministic outcomes: the same choice history always yields the same
    winning path, with ties broken by path declaration order.
  - Resumable sessions: snapshots round-trip through any SnapshotStore
    (memory, files, Redis) and a lost save falls back to a fresh session.
  - Non-blocking side effects: snapshot, sync and analytics writes are
    dispatched in the background, logged and counted on failure.
  - Content validation: dangling scene references and unreachable scenes are
    reported, not fatal.

# Usage

	package main

	import (
		"context"
		"fmt"
		"log"

		funnel "github.com/prodyssey/vibe-cto-dot-ai-sub000"
	)

	func main() {
		ctx := context.Background()
		eng, err := funnel.Open(ctx, "funnel.yaml")
		if err != nil {
			log.Fatal(err)
		}
		defer eng.Close()

		sess := eng.NewSession("")
		sess.StartSession()

		// Walk: navigate, record choices, then finalize.
		_ = sess.NavigateTo("mission-select")
		_ = sess.RecordChoice("mission-select", "ignition", nil)
		fmt.Println("your path:", sess.FinalizePath())
	}
*/
package funnel
