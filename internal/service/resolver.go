package service

import "steakz/internal/domain"

// BranchResolver подбирает филиал по адресу доставки. За интерфейсом, чтобы
// эвристику можно было заменить на геокодинг, не трогая OrderService.
type BranchResolver interface {
	Resolve(address string, branches []domain.Branch) (int64, error)
}

// AddressMatcher сравнивает нормализованные адреса посимвольно по позициям.
// Это намеренно грубая метрика, не редакционное расстояние: сдвиг или другой
// порядок слов резко меняет счёт. Поведение сохранено для совместимости.
type AddressMatcher struct{}

func NewAddressMatcher() *AddressMatcher { return &AddressMatcher{} }

var _ BranchResolver = (*AddressMatcher)(nil)

// Resolve выбирает филиал с максимальным числом позиционных совпадений; при
// равенстве побеждает первый филиал в естественном порядке списка
func (m *AddressMatcher) Resolve(address string, branches []domain.Branch) (int64, error) {
	if len(branches) == 0 {
		return 0, ErrNoBranchesAvailable
	}
	input := normalizeAddress(address)
	best := branches[0]
	bestScore := 0
	for _, b := range branches {
		cand := normalizeAddress(b.Address)
		n := len(cand)
		if len(input) < n {
			n = len(input)
		}
		score := 0
		for i := 0; i < n; i++ {
			if cand[i] == input[i] {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = b, score
		}
	}
	return best.ID, nil
}

// normalizeAddress: lower-case, только ASCII-буквы и цифры
func normalizeAddress(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			out = append(out, c)
		case c >= 'A' && c <= 'Z':
			out = append(out, c+('a'-'A'))
		}
	}
	return string(out)
}
