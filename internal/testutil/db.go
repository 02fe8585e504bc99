// /internal/testutil/db.go
// Helpers de teste compartilhados: banco sqlite em memória no lugar do
// Postgres, para que os testes de pacote rodem sem infraestrutura.
package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/gabrielmsouza/painel-consultas/internal/database"
)

var seq atomic.Int64

// ConnectTestDB abre um banco sqlite em memória exclusivo do teste, migrado,
// e o instala em database.DB até o fim do teste.
func ConnectTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared&_busy_timeout=5000", seq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Falha ao abrir sqlite em memória: %v", err)
	}

	// sqlite serializa escritas; uma única conexão evita "database is locked"
	// nos testes de concorrência.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Falha ao obter *sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := database.Migrate(db); err != nil {
		t.Fatalf("Falha ao migrar banco de teste: %v", err)
	}

	anterior := database.DB
	database.DB = db
	t.Cleanup(func() {
		database.DB = anterior
		_ = sqlDB.Close()
	})
	return db
}
