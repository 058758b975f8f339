package workflow

// ComputeProgress returns round(100 * completed / total), halves rounded up.
// A project without tasks is at 0.
func ComputeProgress(tasks []*Task) int {
	total := 0
	completed := 0
	for _, t := range tasks {
		if t == nil {
			continue
		}
		total++
		if t.Status == TaskCompleted {
			completed++
		}
	}
	if total == 0 {
		return 0
	}
	return (200*completed + total) / (2 * total)
}

// ApplyProgress writes the derived progress onto p and latches the status to
// Completed at 100. A completed project is never moved back by recomputation.
// It reports whether p changed.
func ApplyProgress(p *Project, tasks []*Task) bool {
	if p == nil {
		return false
	}
	progress := ComputeProgress(tasks)
	changed := p.Progress != progress
	p.Progress = progress
	if progress == 100 && p.Status != ProjectCompleted {
		p.Status = ProjectCompleted
		changed = true
	}
	return changed
}
