package httphandler

import (
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
)

const maxImageSize = 10 << 20

type AccountHandler struct {
	accounts port.AccountManager
}

func RegisterAccount(mux *http.ServeMux, accounts port.AccountManager) {
	h := AccountHandler{accounts}
	mux.HandleFunc("POST /v1/account/register", h.PostRegister)
	mux.HandleFunc("POST /v1/account/password/otp", h.PostPasswordOTP)
	mux.HandleFunc("POST /v1/account/password/verify", h.PostPasswordVerify)
	mux.HandleFunc("POST /v1/account/password", h.PostPassword)
	mux.HandleFunc("POST /v1/admin/categories", h.PostCategory)
	mux.HandleFunc("POST /v1/admin/currencies", h.PostCurrency)
	mux.HandleFunc("POST /v1/admin/products", h.PostProduct)
}

func (h AccountHandler) PostRegister(w http.ResponseWriter, r *http.Request) {
	var req Registration
	if !decodeJSON(w, r, &req) {
		return
	}

	err := h.accounts.Register(r.Context(), domain.Registration{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, err, "Registration failed")
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h AccountHandler) PostPasswordOTP(w http.ResponseWriter, r *http.Request) {
	var req PasswordOTPRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.accounts.RequestPasswordOTP(r.Context(), req.Email); err != nil {
		writeError(w, err, "Failed to send the code")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h AccountHandler) PostPasswordVerify(w http.ResponseWriter, r *http.Request) {
	var req PasswordOTP
	if !decodeJSON(w, r, &req) {
		return
	}

	err := h.accounts.VerifyPasswordOTP(r.Context(), domain.PasswordOTP{
		Email:       req.Email,
		OTP:         req.OTP,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		writeError(w, err, "Failed to reset the password")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h AccountHandler) PostPassword(w http.ResponseWriter, r *http.Request) {
	var req PasswordChange
	if !decodeJSON(w, r, &req) {
		return
	}

	err := h.accounts.ChangePassword(r.Context(), domain.PasswordChange{
		Current: req.CurrentPassword,
		New:     req.NewPassword,
		Confirm: req.ConfirmPassword,
	})
	if err != nil {
		writeError(w, err, "Failed to change the password")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h AccountHandler) PostCategory(w http.ResponseWriter, r *http.Request) {
	var req NewCategory
	if !decodeJSON(w, r, &req) {
		return
	}

	c, err := h.accounts.CreateCategory(r.Context(), domain.NewCategory{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, err, "Failed to create category")
		return
	}
	writeJSON(w, http.StatusCreated, fromCategory(c))
}

func (h AccountHandler) PostCurrency(w http.ResponseWriter, r *http.Request) {
	var req NewCurrency
	if !decodeJSON(w, r, &req) {
		return
	}

	c, err := h.accounts.CreateCurrency(r.Context(), domain.NewCurrency{
		CountryName:  req.CountryName,
		CountryCode:  req.CountryCode,
		CurrencyCode: req.CurrencyCode,
		CurrencyName: req.CurrencyName,
	})
	if err != nil {
		writeError(w, err, "Failed to create currency")
		return
	}
	writeJSON(w, http.StatusCreated, fromCurrency(c))
}

// PostProduct accepts a JSON product or a multipart form carrying an
// "image" file.
func (h AccountHandler) PostProduct(w http.ResponseWriter, r *http.Request) {
	const op = "AccountHandler.PostProduct"
	log := slog.With("op", op)

	var np domain.NewProduct
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == MediaTypeMultipart {
		r.Body = http.MaxBytesReader(w, r.Body, maxImageSize+maxBodySize)
		if err := r.ParseMultipartForm(maxImageSize); err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid form data"})
			log.Warn("failed to parse form", "err", err)
			return
		}
		np = productFromForm(r)

		file, hdr, err := r.FormFile("image")
		if err == nil {
			defer file.Close()
			np.Image = &domain.ProductImage{Filename: hdr.Filename, Content: file}
		}
	} else {
		var req NewProduct
		if !decodeJSON(w, r, &req) {
			return
		}
		np = domain.NewProduct{
			Name:            req.Name,
			Description:     req.Description,
			Price:           req.Price,
			DiscountPercent: req.DiscountPercent,
			Stock:           req.Stock,
			Tags:            req.Tags,
			CategoryID:      req.CategoryID,
			CurrencyID:      req.CurrencyID,
		}
	}

	p, err := h.accounts.CreateProduct(r.Context(), np)
	if err != nil {
		writeError(w, err, "Failed to create product")
		return
	}
	log.Info("product created", "productID", p.ID)
	writeJSON(w, http.StatusCreated, fromProduct(p))
}

// productFromForm leaves unparsable numbers at zero for validation to
// report.
func productFromForm(r *http.Request) domain.NewProduct {
	price, _ := strconv.ParseFloat(r.FormValue("price"), 64)
	discount, _ := strconv.Atoi(r.FormValue("discount_percent"))
	stock, _ := strconv.Atoi(r.FormValue("stock"))
	category, _ := strconv.ParseInt(r.FormValue("category_id"), 10, 64)
	currency, _ := strconv.ParseInt(r.FormValue("currency_id"), 10, 64)

	var tags []string
	for tag := range strings.SplitSeq(r.FormValue("tags"), ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}

	return domain.NewProduct{
		Name:            r.FormValue("name"),
		Description:     r.FormValue("description"),
		Price:           price,
		DiscountPercent: discount,
		Stock:           stock,
		Tags:            tags,
		CategoryID:      category,
		CurrencyID:      currency,
	}
}
