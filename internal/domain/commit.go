package domain

// ElementSetUpdateKind tags every broadcast commit message.
const ElementSetUpdateKind = "ELEMENT_SET_UPDATE"

// Actor identifies who produced a commit.
type Actor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ElementSetUpdate is the full-value replacement message sent at every
// commit point. Receivers apply it last-writer-wins.
type ElementSetUpdate struct {
	Kind               string        `json:"kind"`
	TargetElementSetID string        `json:"targetElementSetId"`
	ActorID            string        `json:"actorId"`
	ActorName          string        `json:"actorName"`
	Payload            []DrawElement `json:"payload"`
}

// NewElementSetUpdate builds a message carrying a private copy of elements.
func NewElementSetUpdate(elementSetID string, actor Actor, elements []DrawElement) ElementSetUpdate {
	payload := CloneElements(elements)
	if payload == nil {
		payload = []DrawElement{}
	}
	return ElementSetUpdate{
		Kind:               ElementSetUpdateKind,
		TargetElementSetID: elementSetID,
		ActorID:            actor.ID,
		ActorName:          actor.Name,
		Payload:            payload,
	}
}
