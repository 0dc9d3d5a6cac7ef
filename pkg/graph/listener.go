package graph

// Listener receives graph mutations after they are applied.
type Listener interface {
	NodeAdded(n *Node)
	NodeRemoved(n *Node)
	NodeMoved(n *Node)
	// NodeChanged reports a change that may move socket anchors, such as collapsing.
	NodeChanged(n *Node)
	EdgeAdded(e *Edge)
	EdgeRemoved(e *Edge)
}

// NopListener ignores every event. Embed it to implement a subset of Listener.
type NopListener struct{}

func (NopListener) NodeAdded(*Node)   {}
func (NopListener) NodeRemoved(*Node) {}
func (NopListener) NodeMoved(*Node)   {}
func (NopListener) NodeChanged(*Node) {}
func (NopListener) EdgeAdded(*Edge)   {}
func (NopListener) EdgeRemoved(*Edge) {}
