// Command big_sample writes a CSV file of random typed rows for load tests:
//
//	big_sample out.csv 100000 8
package main

import (
	"bufio"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/and-hom/tabconv/adapter"
	"github.com/and-hom/tabconv/mapping"
	"github.com/and-hom/tabconv/table"
)

var columnTypes = []string{
	table.TypeNameInt,
	table.TypeNameString,
	table.TypeNameDouble,
	table.TypeNameBoolean,
	table.TypeNameDate,
	table.TypeNameDateTime,
}

func main() {
	if len(os.Args) < 4 {
		log.Fatal("Usage: big_sample <file> <rows> <cols>")
	}
	rows, err := strconv.Atoi(os.Args[2])
	if err != nil {
		log.Fatal(err)
	}
	cols, err := strconv.Atoi(os.Args[3])
	if err != nil {
		log.Fatal(err)
	}

	t, err := generate(rand.New(rand.NewSource(time.Now().UnixNano())), rows, cols)
	if err != nil {
		log.Fatal(err)
	}

	file, err := os.Create(os.Args[1])
	if err != nil {
		log.Fatal(err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	if err := (adapter.CSV{}).Encode(w, t, mapping.NewConfiguration(os.Args[1])); err != nil {
		log.Fatal(err)
	}
	if err := w.Flush(); err != nil {
		log.Fatal(err)
	}
}

func generate(rnd *rand.Rand, rows, cols int) (*table.Table, error) {
	defs := make([]table.ColumnDef, cols)
	for j := range defs {
		defs[j] = table.ColumnDef{Name: fmt.Sprintf("c-%d", j), Type: columnTypes[j%len(columnTypes)]}
	}
	t := table.New()
	if err := t.SetColumns(defs); err != nil {
		return nil, err
	}

	base := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	values := make(map[string]string, cols)
	for i := 0; i < rows; i++ {
		for _, def := range defs {
			values[def.Name] = randomValue(rnd, def.Type, base)
		}
		if _, err := t.AddRow(values); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func randomValue(rnd *rand.Rand, typeName string, base time.Time) string {
	switch typeName {
	case table.TypeNameInt:
		return strconv.FormatInt(rnd.Int63n(1000000)-500000, 10)
	case table.TypeNameDouble:
		return strconv.FormatFloat(rnd.Float64()*10000, 'f', 2, 64)
	case table.TypeNameBoolean:
		return strconv.FormatBool(rnd.Intn(2) == 1)
	case table.TypeNameDate:
		return base.AddDate(0, 0, rnd.Intn(9000)).Format(table.DateLayout)
	case table.TypeNameDateTime:
		return base.Add(time.Duration(rnd.Int63n(int64(9000 * 24 * time.Hour)))).Format(table.DateTimeLayout)
	default:
		return randString(rnd, 16)
	}
}

const letterBytes = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

func randString(rnd *rand.Rand, n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = letterBytes[rnd.Int63()%int64(len(letterBytes))]
	}
	return string(b)
}
