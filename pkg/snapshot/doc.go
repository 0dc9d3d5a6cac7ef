// Package snapshot converts an editor's graph and viewport to and from the
// persisted snapshot format.
//
// # Format
//
// A snapshot is a single JSON record:
//
//	{
//	  "nodes": [{"id": "n1", "name": "Position", "x": 10, "y": 20, "presetIndex": 0}],
//	  "edges": [{"startNodeId": "n1", "startSocketName": "X",
//	             "endNodeId": "n2", "endSocketName": "X"}],
//	  "viewport": {"offsetX": 0, "offsetY": 0, "scale": 1}
//	}
//
// Edges name their endpoints by node id and socket name. The start is always
// an output and the end an input, which completes the durable socket key.
//
// # Restoring
//
// [Restore] always builds a fresh graph and never touches the caller's
// current one, so a failed load cannot lose work. Lookup failures are local:
// a node whose preset is unknown is skipped, an edge whose socket no longer
// resolves (or that the graph rejects) is skipped, and each skip is listed
// in the [Report]. The rest of the snapshot still loads.
package snapshot
