package screen

// PageViews slices grouped gene views for one result page. Pagination over
// genes cannot be pushed into the storage query because one gene spans an
// unknown number of raw rows, so the caller fetches the full filtered set,
// groups it, and slices here. page is 1-based; out-of-range pages yield an
// empty slice.
func PageViews(views []GeneView, page, pageSize int) []GeneView {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		return nil
	}
	lo := (page - 1) * pageSize
	if lo >= len(views) {
		return nil
	}
	hi := lo + pageSize
	if hi > len(views) {
		hi = len(views)
	}
	return views[lo:hi]
}

// TotalPages returns ceil(total/pageSize).
func TotalPages(total, pageSize int) int {
	if pageSize < 1 || total <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}
