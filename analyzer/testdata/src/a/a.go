package a

func convertible() {
	nums := []int{1, 2, 3}
	for i := 0; i < len(nums); i++ { // want `can be converted to a range loop`
		println(nums[i])
	}
}

func suppressed() {
	nums := []int{1, 2, 3}
	//loopconv:ignore
	for i := 0; i < len(nums); i++ {
		println(nums[i])
	}
}

func alreadyRange() {
	nums := []int{1, 2, 3}
	for _, n := range nums {
		println(n)
	}
}

func indexEscapes() {
	nums := []int{1, 2, 3}
	for i := 0; i < len(nums); i++ {
		println(i, nums[i])
	}
}

func nested() {
	xs := []int{1, 2, 3}
	for i := 0; i < len(xs); i++ { // want `can be converted to a range loop`
		for j := 0; j < len(xs); j++ { // want `overlaps an already accepted rewrite`
			println(xs[j])
		}
	}
}
