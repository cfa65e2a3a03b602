package ordernum

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultPrefix — торговый префикс номеров заказов Fog & Leaf.
const DefaultPrefix = "FOG"

// Index отдаёт наибольший существующий номер заказа с данным префиксом.
// Реализуется транзакционным репозиторием заказов: запрос обязан выполняться
// в той же транзакции, что и вставка заказа.
type Index interface {
	MaxOrderNumber(prefix string) (string, error)
}

// Generator выдаёт следующий последовательный номер заказа в пределах
// календарного месяца: PREFIX + YYYY + MM + суффикс минимум из 4 цифр
// (например, FOG2025010007).
//
// Пара "найти наибольший, затем вставить" не атомарна: при одновременных
// размещениях две транзакции могут вычислить один и тот же номер и
// столкнуться на уникальном индексе orders.order_number. Вызывающий слой
// обязан повторить шаг нумерации целиком при ErrOrderNumberConflict.
type Generator struct {
	prefix string
}

// NewGenerator создаёт генератор с торговым префиксом.
func NewGenerator(prefix string) *Generator {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Generator{prefix: prefix}
}

// MonthPrefix возвращает префикс номера для месяца, в который попадает ts.
// Временная метка передаётся явно, чтобы тесты фиксировали границы месяцев.
func (g *Generator) MonthPrefix(ts time.Time) string {
	return g.prefix + ts.UTC().Format("200601")
}

// Next вычисляет следующий номер заказа для месяца ts по данным index.
// Суффикс — десятичное число с дополнением нулями до 4 знаков; после 9999
// заказов в месяц суффикс расширяется на пятый и последующие разряды.
// Реализации Index обязаны сравнивать номера сначала по длине, затем
// лексикографически, чтобы расширенный суффикс оставался наибольшим.
func (g *Generator) Next(ts time.Time, index Index) (string, error) {
	monthPrefix := g.MonthPrefix(ts)

	last, err := index.MaxOrderNumber(monthPrefix)
	if err != nil {
		return "", fmt.Errorf("query max order number: %w", err)
	}

	seq := 1
	if last != "" {
		suffix := strings.TrimPrefix(last, monthPrefix)
		parsed, err := strconv.Atoi(suffix)
		if err != nil {
			return "", fmt.Errorf("parse order number suffix %q: %w", suffix, err)
		}
		seq = parsed + 1
	}

	return fmt.Sprintf("%s%04d", monthPrefix, seq), nil
}
