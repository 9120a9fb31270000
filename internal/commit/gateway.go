package commit

import "drawboard/internal/domain"

// Publisher accepts commit messages without blocking.
type Publisher interface {
	Publish(msg domain.ElementSetUpdate) bool
}

// Gateway stamps an editor's commits with its element set and actor.
type Gateway struct {
	elementSetID string
	actor        domain.Actor
	pub          Publisher
}

func NewGateway(elementSetID string, actor domain.Actor, pub Publisher) *Gateway {
	return &Gateway{elementSetID: elementSetID, actor: actor, pub: pub}
}

// Message builds the update for els.
func (g *Gateway) Message(els []domain.DrawElement) domain.ElementSetUpdate {
	return domain.NewElementSetUpdate(g.elementSetID, g.actor, els)
}

// Send hands the update for els to the publisher and reports whether it
// was queued.
func (g *Gateway) Send(els []domain.DrawElement) bool {
	return g.pub.Publish(g.Message(els))
}

// Commit is Send without the report, for use as an editor.Committer.
func (g *Gateway) Commit(els []domain.DrawElement) {
	g.Send(els)
}
