package commands

import "container/heap"

// orderItem - элемент очереди исполнения.
type orderItem struct {
	cmd   *Command
	index int
}

// executionOrder реализует heap.Interface: больший приоритет раньше,
// при равном приоритете раньше та команда, что зарегистрирована первой.
type executionOrder []*orderItem

func (pq executionOrder) Len() int { return len(pq) }

func (pq executionOrder) Less(i, j int) bool {
	a, b := pq[i].cmd, pq[j].cmd
	if a.priority != b.priority {
		return a.priority > b.priority
	}
	return a.id < b.id
}

func (pq executionOrder) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *executionOrder) Push(x interface{}) {
	item := x.(*orderItem)
	item.index = len(*pq)
	*pq = append(*pq, item)
}

func (pq *executionOrder) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil  // избегаем утечки памяти
	item.index = -1 // для безопасности
	*pq = old[0 : n-1]
	return item
}

// sortForExecution возвращает команды в порядке исполнения.
func sortForExecution(cmds []*Command) []*Command {
	pq := make(executionOrder, 0, len(cmds))
	for _, c := range cmds {
		pq = append(pq, &orderItem{cmd: c, index: len(pq)})
	}
	heap.Init(&pq)

	out := make([]*Command, 0, len(cmds))
	for pq.Len() > 0 {
		out = append(out, heap.Pop(&pq).(*orderItem).cmd)
	}
	return out
}
