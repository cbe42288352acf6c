package mockbackend

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/Alturino/kickshopping/internal/constants"
)

type detailedCartItem struct {
	CartItem
	Product *Product `json:"product"`
}

type legacyUser struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

type catalogUser struct {
	ID        int    `json:"usu_id"`
	Username  string `json:"usu_usuario"`
	FullName  string `json:"usu_nombre_completo"`
	RoleID    int    `json:"usu_rol_id"`
	RoleName  string `json:"rol_nombre"`
	Birthdate string `json:"birthdate,omitempty"`
}

func toLegacyUser(u User) legacyUser {
	return legacyUser{ID: u.ID, Username: u.Email, Email: u.Email, FullName: u.FullName}
}

func toCatalogUser(u User) catalogUser {
	role := roleBuyer
	if u.UserType == constants.UserTypeSeller {
		role = roleSeller
	}
	userType := u.UserType
	if userType == "" {
		userType = constants.UserTypeBuyer
	}
	return catalogUser{
		ID:        u.ID,
		Username:  u.Email,
		FullName:  u.FullName,
		RoleID:    role,
		RoleName:  userType,
		Birthdate: u.Birthdate,
	}
}

func (b *Backend) listProducts(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	products := make([]Product, 0, len(b.products))
	for _, p := range b.products {
		products = append(products, p)
	}
	b.mu.Unlock()
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	writeJSON(r.Context(), w, http.StatusOK, products)
}

func (b *Backend) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeDetail(r.Context(), w, http.StatusUnprocessableEntity, "id inválido")
		return
	}
	b.mu.Lock()
	p, ok := b.products[id]
	b.mu.Unlock()
	if !ok {
		writeDetail(r.Context(), w, http.StatusNotFound, "Producto no encontrado")
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, p)
}

func (b *Backend) listCartLegacy(w http.ResponseWriter, r *http.Request) {
	userID, err := queryUserID(r)
	if err != nil {
		writeDetail(r.Context(), w, http.StatusUnprocessableEntity, "user_id inválido")
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, b.CartItems(userID))
}

func (b *Backend) listCartCatalog(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r)
	if err != nil {
		writeDetail(r.Context(), w, http.StatusUnprocessableEntity, "user_id inválido")
		return
	}
	b.mu.Lock()
	items := b.cartOf(userID)
	detailed := make([]detailedCartItem, 0, len(items))
	for _, item := range items {
		d := detailedCartItem{CartItem: item}
		if p, ok := b.products[item.ProductID]; ok {
			d.Product = &p
		}
		detailed = append(detailed, d)
	}
	b.mu.Unlock()
	writeJSON(r.Context(), w, http.StatusOK, detailed)
}

func (b *Backend) addCartItemLegacy(w http.ResponseWriter, r *http.Request) {
	userID, err := queryUserID(r)
	if err != nil {
		writeDetail(r.Context(), w, http.StatusUnprocessableEntity, "user_id inválido")
		return
	}
	body := CartItem{}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.ProductID <= 0 || body.Quantity <= 0 {
		writeDetail(r.Context(), w, http.StatusUnprocessableEntity, "cuerpo inválido")
		return
	}
	id := b.AddCartItem(userID, body.ProductID, body.Quantity)
	writeJSON(r.Context(), w, http.StatusOK, CartItem{ID: id, UserID: userID, ProductID: body.ProductID, Quantity: body.Quantity})
}

func (b *Backend) addCartItemCatalog(w http.ResponseWriter, r *http.Request) {
	if _, err := b.userFromBearer(r); err != nil {
		writeDetail(r.Context(), w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	body := CartItem{}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.UserID <= 0 || body.ProductID <= 0 || body.Quantity <= 0 {
		writeDetail(r.Context(), w, http.StatusUnprocessableEntity, "cuerpo inválido")
		return
	}
	b.mu.Lock()
	_, ok := b.products[body.ProductID]
	b.mu.Unlock()
	if !ok {
		writeDetail(r.Context(), w, http.StatusNotFound, "Producto no encontrado")
		return
	}
	id := b.AddCartItem(body.UserID, body.ProductID, body.Quantity)
	body.ID = id
	writeJSON(r.Context(), w, http.StatusCreated, body)
}

func (b *Backend) removeCartItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeDetail(r.Context(), w, http.StatusUnprocessableEntity, "id inválido")
		return
	}
	b.mu.Lock()
	_, ok := b.cartItems[id]
	delete(b.cartItems, id)
	b.mu.Unlock()
	if !ok {
		writeDetail(r.Context(), w, http.StatusNotFound, "Item no encontrado")
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, map[string]bool{"ok": true})
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed hashing password with error=%w", err)
	}
	return string(hashed), nil
}

func (b *Backend) checkCredentials(username string, password string) (User, bool) {
	b.mu.Lock()
	u, ok := b.userByEmail(username)
	b.mu.Unlock()
	if !ok {
		return User{}, false
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return User{}, false
	}
	return u, true
}

func (b *Backend) loginLegacy(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeDetail(r.Context(), w, http.StatusUnprocessableEntity, "formulario inválido")
		return
	}
	u, ok := b.checkCredentials(r.PostForm.Get("username"), r.PostForm.Get("password"))
	if !ok {
		writeDetail(r.Context(), w, http.StatusUnauthorized, "Incorrect username or password")
		return
	}
	token, err := b.IssueToken(u)
	if err != nil {
		writeDetail(r.Context(), w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, map[string]string{"access_token": token, "token_type": "bearer"})
}

func (b *Backend) loginCatalog(w http.ResponseWriter, r *http.Request) {
	body := struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}{}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeDetail(r.Context(), w, http.StatusUnprocessableEntity, "cuerpo inválido")
		return
	}
	u, ok := b.checkCredentials(body.Username, body.Password)
	if !ok {
		writeDetail(r.Context(), w, http.StatusUnauthorized, "Credenciales inválidas")
		return
	}
	token, err := b.IssueToken(u)
	if err != nil {
		writeDetail(r.Context(), w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, map[string]any{
		"access_token": token,
		"token_type":   "bearer",
		"user_id":      u.ID,
		"username":     u.Email,
		"user_type":    toCatalogUser(u).RoleName,
	})
}

type registrationBody struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Birthdate string `json:"birthdate"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	UserType  string `json:"user_type"`
}

// register stores a new user. body.Password must already be hashed.
func (b *Backend) register(body registrationBody) (User, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.userByEmail(body.Email); exists {
		return User{}, false
	}
	u := User{
		ID:        b.id(),
		Email:     body.Email,
		Password:  body.Password,
		FullName:  strings.TrimSpace(body.FirstName + " " + body.LastName),
		UserType:  body.UserType,
		Birthdate: body.Birthdate,
	}
	b.users[u.ID] = u
	return u, true
}

func (b *Backend) registerLegacy(w http.ResponseWriter, r *http.Request) {
	body := registrationBody{}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Email == "" || body.Password == "" {
		writeDetail(r.Context(), w, http.StatusUnprocessableEntity, "cuerpo inválido")
		return
	}
	hashed, err := hashPassword(body.Password)
	if err != nil {
		writeDetail(r.Context(), w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	body.Password = hashed
	body.FirstName, body.LastName, body.UserType = "", "", ""
	u, ok := b.register(body)
	if !ok {
		writeDetail(r.Context(), w, http.StatusBadRequest, "Email already registered")
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, toLegacyUser(u))
}

func (b *Backend) registerCatalog(w http.ResponseWriter, r *http.Request) {
	body := registrationBody{}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Email == "" || body.Password == "" {
		writeDetail(r.Context(), w, http.StatusUnprocessableEntity, "cuerpo inválido")
		return
	}
	hashed, err := hashPassword(body.Password)
	if err != nil {
		writeDetail(r.Context(), w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	body.Password = hashed
	u, ok := b.register(body)
	if !ok {
		writeDetail(r.Context(), w, http.StatusConflict, "El usuario ya existe")
		return
	}
	token, err := b.IssueToken(u)
	if err != nil {
		writeDetail(r.Context(), w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(r.Context(), w, http.StatusCreated, map[string]any{
		"access_token": token,
		"token_type":   "bearer",
		"user_id":      u.ID,
		"username":     u.Email,
	})
}

func (b *Backend) meLegacy(w http.ResponseWriter, r *http.Request) {
	userID, err := queryUserID(r)
	if err != nil {
		writeDetail(r.Context(), w, http.StatusUnprocessableEntity, "user_id inválido")
		return
	}
	u, ok := b.User(userID)
	if !ok {
		writeDetail(r.Context(), w, http.StatusNotFound, "User not found")
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, toLegacyUser(u))
}

func (b *Backend) meCatalog(w http.ResponseWriter, r *http.Request) {
	u, err := b.userFromBearer(r)
	if err != nil {
		writeDetail(r.Context(), w, http.StatusUnauthorized, "Token inválido o expirado")
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, toCatalogUser(u))
}

type profileUpdateBody struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

func (b *Backend) update(id int, body profileUpdateBody) (User, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	u, ok := b.users[id]
	if !ok {
		return User{}, false
	}
	if body.FullName != "" {
		u.FullName = body.FullName
	}
	if body.Email != "" {
		u.Email = body.Email
	}
	b.users[id] = u
	return u, true
}

func (b *Backend) updateMeLegacy(w http.ResponseWriter, r *http.Request) {
	userID, err := queryUserID(r)
	if err != nil {
		writeDetail(r.Context(), w, http.StatusUnprocessableEntity, "user_id inválido")
		return
	}
	body := profileUpdateBody{}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeDetail(r.Context(), w, http.StatusUnprocessableEntity, "cuerpo inválido")
		return
	}
	u, ok := b.update(userID, body)
	if !ok {
		writeDetail(r.Context(), w, http.StatusNotFound, "User not found")
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, toLegacyUser(u))
}

func (b *Backend) updateMeCatalog(w http.ResponseWriter, r *http.Request) {
	u, err := b.userFromBearer(r)
	if err != nil {
		writeDetail(r.Context(), w, http.StatusUnauthorized, "Token inválido o expirado")
		return
	}
	body := profileUpdateBody{}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeDetail(r.Context(), w, http.StatusUnprocessableEntity, "cuerpo inválido")
		return
	}
	u, _ = b.update(u.ID, body)
	writeJSON(r.Context(), w, http.StatusOK, toLegacyUser(u))
}
