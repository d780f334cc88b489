package piece

import (
	"fmt"
	"math/rand/v2"
)

// Shape 方块形状及其旋转状态
type Shape struct {
	Name      string    `json:"name"`
	Rotations [][][]int `json:"rotations"`
}

// Shapes 七种标准方块，序列中的索引即指向此表
var Shapes = []Shape{
	{
		Name: "I",
		Rotations: [][][]int{
			{{0, 0, 0, 0}, {1, 1, 1, 1}, {0, 0, 0, 0}, {0, 0, 0, 0}},
			{{0, 0, 1, 0}, {0, 0, 1, 0}, {0, 0, 1, 0}, {0, 0, 1, 0}},
			{{0, 0, 0, 0}, {0, 0, 0, 0}, {1, 1, 1, 1}, {0, 0, 0, 0}},
			{{0, 1, 0, 0}, {0, 1, 0, 0}, {0, 1, 0, 0}, {0, 1, 0, 0}},
		},
	},
	{
		Name: "J",
		Rotations: [][][]int{
			{{1, 0, 0}, {1, 1, 1}, {0, 0, 0}},
			{{0, 1, 1}, {0, 1, 0}, {0, 1, 0}},
			{{0, 0, 0}, {1, 1, 1}, {0, 0, 1}},
			{{0, 1, 0}, {0, 1, 0}, {1, 1, 0}},
		},
	},
	{
		Name: "L",
		Rotations: [][][]int{
			{{0, 0, 1}, {1, 1, 1}, {0, 0, 0}},
			{{0, 1, 0}, {0, 1, 0}, {0, 1, 1}},
			{{0, 0, 0}, {1, 1, 1}, {1, 0, 0}},
			{{1, 1, 0}, {0, 1, 0}, {0, 1, 0}},
		},
	},
	{
		Name: "O",
		Rotations: [][][]int{
			{{1, 1}, {1, 1}},
		},
	},
	{
		Name: "S",
		Rotations: [][][]int{
			{{0, 1, 1}, {1, 1, 0}, {0, 0, 0}},
			{{0, 1, 0}, {0, 1, 1}, {0, 0, 1}},
		},
	},
	{
		Name: "T",
		Rotations: [][][]int{
			{{0, 1, 0}, {1, 1, 1}, {0, 0, 0}},
			{{0, 1, 0}, {0, 1, 1}, {0, 1, 0}},
			{{0, 0, 0}, {1, 1, 1}, {0, 1, 0}},
			{{0, 1, 0}, {1, 1, 0}, {0, 1, 0}},
		},
	},
	{
		Name: "Z",
		Rotations: [][][]int{
			{{1, 1, 0}, {0, 1, 1}, {0, 0, 0}},
			{{0, 0, 1}, {0, 1, 1}, {0, 1, 0}},
		},
	},
}

// DefaultSequenceLength 每局默认下发的序列长度
const DefaultSequenceLength = 100

// GenerateSequence 生成指定长度的方块序列
// 采用装袋法：反复对全部七种方块做一次均匀洗牌后追加，
// 最后截断到目标长度，保证每种方块的出现频率接近均匀
func GenerateSequence(length int) ([]int, error) {
	if length < 0 {
		return nil, fmt.Errorf("无效的序列长度: %d", length)
	}

	sequence := make([]int, 0, length+len(Shapes))
	for len(sequence) < length {
		sequence = append(sequence, shuffledBag()...)
	}
	return sequence[:length], nil
}

// shuffledBag 返回一袋洗好的方块索引（Fisher-Yates）
func shuffledBag() []int {
	bag := make([]int, len(Shapes))
	for i := range bag {
		bag[i] = i
	}
	rand.Shuffle(len(bag), func(i, j int) {
		bag[i], bag[j] = bag[j], bag[i]
	})
	return bag
}
