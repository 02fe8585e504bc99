// /internal/database/seed.go
package database

import (
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/gabrielmsouza/painel-consultas/internal/model"
)

// SeedAdmin garante que exista ao menos um administrador no banco.
// Idempotente: se o e-mail já existe, nada é feito.
func SeedAdmin(email, senha string) {
	var user model.Usuario
	result := DB.Where("email = ?", email).First(&user)

	if result.Error != nil && result.Error == gorm.ErrRecordNotFound {
		log.Println("Administrador não encontrado, criando um novo...")

		senhaHash, err := bcrypt.GenerateFromPassword([]byte(senha), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("Falha ao criar hash da senha do administrador: %v", err)
		}

		admin := model.Usuario{
			Nome:      "Administrador",
			Email:     email,
			SenhaHash: string(senhaHash),
			Nivel:     model.NivelAdministrador,
		}

		if err := DB.Create(&admin).Error; err != nil {
			log.Fatalf("Falha ao criar o administrador: %v", err)
		}
		log.Println("Administrador criado com sucesso.")
	} else {
		log.Println("Administrador já existe.")
	}
}
