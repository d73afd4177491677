package ecs

// ObserverEvent selects which side of an archetype transition an observer
// reacts to.
type ObserverEvent uint8

const (
	// OnAdd fires when a transition makes an entity match the observer.
	OnAdd ObserverEvent = iota
	// OnRemove fires when a transition makes an entity stop matching.
	OnRemove
)

// ObserverId identifies a registered observer.
type ObserverId int

// ObserverCallback is invoked with the entity whose transition matched.
// Structural changes made from inside a callback are deferred.
type ObserverCallback func(w *World, e EntityId)

// ObserverDef describes an observer before registration: the event kind and
// the terms an archetype must (or must not) satisfy. Observer terms reduce
// to plain required/excluded sets; wildcard and any-of forms are not part
// of the observer contract.
type ObserverDef struct {
	event ObserverEvent
	terms []Term
}

// OnAddObserver builds an observer definition firing when an entity starts
// matching the terms.
func OnAddObserver(terms ...Term) ObserverDef {
	return ObserverDef{event: OnAdd, terms: terms}
}

// OnRemoveObserver builds an observer definition firing when an entity
// stops matching the terms.
func OnRemoveObserver(terms ...Term) ObserverDef {
	return ObserverDef{event: OnRemove, terms: terms}
}

type observer struct {
	id       ObserverId
	event    ObserverEvent
	required []ComponentId
	excluded []ComponentId
	callback ObserverCallback
}

// Observe registers an observer and returns its handle. Callbacks for a
// single transition fire in registration order.
func (w *World) Observe(def ObserverDef, callback ObserverCallback) ObserverId {
	o := &observer{
		id:       w.nextObserverId,
		event:    def.event,
		callback: callback,
	}
	w.nextObserverId++
	for _, t := range def.terms {
		w.resolveObserverTerm(o, t, false)
	}
	w.observers = append(w.observers, o)
	return o.id
}

// Unobserve removes a registered observer.
func (w *World) Unobserve(id ObserverId) bool {
	for i, o := range w.observers {
		if o.id == id {
			w.observers = append(w.observers[:i], w.observers[i+1:]...)
			return true
		}
	}
	return false
}

func (w *World) resolveObserverTerm(o *observer, t Term, inverted bool) {
	negate := t.negate != inverted
	switch t.kind {
	case termComponent:
		cid := w.registry.register(t.typ)
		if negate {
			o.excluded = append(o.excluded, cid)
		} else {
			o.required = append(o.required, cid)
		}
	case termPair:
		if t.target.kind != targetType && t.target.kind != targetEntity {
			panic("observers require concrete pair targets")
		}
		pid := w.registerPairTerm(t, w.relationField(t))
		if negate {
			o.excluded = append(o.excluded, pid)
		} else {
			o.required = append(o.required, pid)
		}
	case termGroup:
		switch {
		case t.op == OpAll && !negate:
			for _, sub := range t.sub {
				w.resolveObserverTerm(o, sub, false)
			}
		case t.op == OpNone && !negate, t.op == OpAny && negate:
			// none(A, B) and not(A ∨ B) both conjoin the negations.
			for _, sub := range t.sub {
				w.resolveObserverTerm(o, sub, true)
			}
		default:
			panic("observers do not support any-of groups")
		}
	}
}

// matches implements the observer predicate: required subset of the
// signature, excluded disjoint from it. A nil archetype never matches.
func (o *observer) matches(a *Archetype) bool {
	if a == nil {
		return false
	}
	for _, cid := range o.required {
		if !a.Contains(cid) {
			return false
		}
	}
	for _, cid := range o.excluded {
		if a.Contains(cid) {
			return false
		}
	}
	return true
}

// dispatchTransition fires every observer affected by a from→to archetype
// transition, in registration order. Either side may be nil (entity create
// and destroy). Callbacks run with the iteration depth raised, so any
// structural change they make lands on the deferred queue instead of
// recursing into the transition.
//
// Callers invoke this before the structural change on shrinking transitions
// (component remove, destroy) so OnRemove callbacks can still read the
// departing data, and after it on growing ones.
func (w *World) dispatchTransition(from, to *Archetype, e EntityId) {
	if len(w.observers) == 0 {
		return
	}
	w.iterationDepth++
	for _, o := range w.observers {
		fromMatch, toMatch := o.matches(from), o.matches(to)
		switch o.event {
		case OnAdd:
			if !fromMatch && toMatch {
				o.callback(w, e)
			}
		case OnRemove:
			if fromMatch && !toMatch {
				o.callback(w, e)
			}
		}
	}
	w.iterationDepth--
}
