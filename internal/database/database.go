// /internal/database/database.go
package database

import (
	"fmt"
	"log"

	"github.com/gabrielmsouza/painel-consultas/internal/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

// ConnectDB abre a conexão com o Postgres a partir da URL completa e executa
// as migrações. Falha fatal em erro: o serviço não sobe sem banco.
func ConnectDB(databaseURL string) {
	if databaseURL == "" {
		log.Fatal("DATABASE_URL não encontrado no ambiente")
	}

	var err error
	DB, err = gorm.Open(postgres.Open(databaseURL), &gorm.Config{})
	if err != nil {
		log.Fatalf("Falha ao conectar ao banco de dados: %v", err)
	}

	fmt.Println("Conexão com o banco de dados estabelecida com sucesso.")

	if err := Migrate(DB); err != nil {
		log.Fatal("Falha ao executar migrações:", err)
	}
	fmt.Println("Migrações concluídas com sucesso.")
}

// Migrate executa o AutoMigrate de todos os modelos do serviço.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Usuario{}, &model.Pagamento{}, &model.Consulta{}, &model.ApiToken{},
	)
}
