package controller

import "sort"

// sortSlots orders slots so every controller comes after the controllers it
// declared with After. Kahn's algorithm; among ready controllers the one
// registered first is taken, so an edge-free registry keeps registration
// order and equal inputs always give equal schedules.
func sortSlots(slots []*slot) ([]*slot, error) {
	n := len(slots)
	indegree := make([]int, n)
	dependents := make([][]int, n)
	for _, s := range slots {
		indegree[s.index] = len(s.after)
		for _, d := range s.after {
			dependents[d] = append(dependents[d], s.index)
		}
	}

	ready := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if indegree[i] == 0 {
			ready = append(ready, i)
		}
	}

	order := make([]*slot, 0, n)
	for len(ready) > 0 {
		i := ready[0]
		ready = ready[1:]
		order = append(order, slots[i])
		for _, j := range dependents[i] {
			indegree[j]--
			if indegree[j] == 0 {
				ready = insertSorted(ready, j)
			}
		}
	}

	if len(order) == n {
		return order, nil
	}
	return nil, &CycleError{Cycles: findCycles(slots, indegree)}
}

func insertSorted(s []int, v int) []int {
	i := sort.SearchInts(s, v)
	s = append(s, 0)
	copy(s[i+1:], s[i:])
	s[i] = v
	return s
}

// findCycles returns the strongly connected components of size > 1 among
// the controllers Kahn's pass could not place (indegree still > 0).
// Tarjan's algorithm over the after-edges.
func findCycles(slots []*slot, indegree []int) [][]ID {
	n := len(slots)
	const unvisited = -1
	index := make([]int, n)
	low := make([]int, n)
	onStack := make([]bool, n)
	for i := range index {
		index[i] = unvisited
	}
	var (
		stack  []int
		next   int
		groups [][]int
	)

	var visit func(v int)
	visit = func(v int) {
		index[v] = next
		low[v] = next
		next++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range slots[v].after {
			if indegree[w] == 0 {
				continue
			}
			if index[w] == unvisited {
				visit(w)
				low[v] = min(low[v], low[w])
			} else if onStack[w] {
				low[v] = min(low[v], index[w])
			}
		}

		if low[v] == index[v] {
			var group []int
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				group = append(group, w)
				if w == v {
					break
				}
			}
			if len(group) > 1 {
				groups = append(groups, group)
			}
		}
	}

	for v := 0; v < n; v++ {
		if indegree[v] > 0 && index[v] == unvisited {
			visit(v)
		}
	}

	for _, g := range groups {
		sort.Ints(g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i][0] < groups[j][0] })

	out := make([][]ID, len(groups))
	for i, g := range groups {
		ids := make([]ID, len(g))
		for j, v := range g {
			ids[j] = slots[v].id
		}
		out[i] = ids
	}
	return out
}
