package service

import (
	"context"
	"io"
	"testing"

	"squashclub/internal/adapter/memory"
	"squashclub/internal/identity"
	"squashclub/internal/model"
	"squashclub/internal/session"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

const testAppID = "test-app"

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestTables(t *testing.T) (*TableStore, *memory.Store) {
	t.Helper()
	mem := memory.New()
	return NewTableStore(mem, testAppID, quietLogger()), mem
}

// remoteDocs 直接读取内存文档库中的集合
func remoteDocs(t *testing.T, mem *memory.Store, collection string) []model.Document {
	t.Helper()
	docs, err := mem.List(context.Background(), identity.CollectionPath(testAppID, collection))
	require.NoError(t, err)
	return docs
}

func seedRemote(t *testing.T, mem *memory.Store, collection string, docs ...model.Document) {
	t.Helper()
	require.NoError(t, mem.Replace(context.Background(), identity.CollectionPath(testAppID, collection), docs))
}

func tableOf(cols []string, rows ...model.Row) *model.Table {
	t := model.NewTable(cols...)
	for _, r := range rows {
		t.Append(r)
	}
	return t
}

func newCache() *session.Cache { return session.NewCache() }
