package ecs

// WorldStats is a point-in-time snapshot of the world's storage shape.
type WorldStats struct {
	Entities       int // live entities
	Archetypes     int // archetypes currently in the graph
	Components     int // registered component kinds, pairs included
	CachedQueries  int // entries in the query cache
	QueuedOps      int // deferred ops awaiting flush
	ComponentBytes int // bytes held by archetype columns
}

// CollectStats gathers storage statistics. Cheap enough to call per frame.
func (w *World) CollectStats() WorldStats {
	stats := WorldStats{
		Entities:      w.index.aliveCount,
		Archetypes:    len(w.archetypes),
		Components:    w.registry.count(),
		CachedQueries: w.cache.entries.Len(),
		QueuedOps:     len(w.queue.ops),
	}
	for _, a := range w.archetypes {
		for i := range a.columns {
			stats.ComponentBytes += len(a.columns[i].data)
		}
	}
	return stats
}
