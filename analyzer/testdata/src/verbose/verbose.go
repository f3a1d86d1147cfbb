package verbose

func get() []int { return nil }

func callBound() {
	for i := 0; i < len(get()); i++ { // want `below the configured minimum`
		println(get()[i])
	}
}
