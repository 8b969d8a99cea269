// ABOUTME: Training-center domain records exchanged with the REST API
// ABOUTME: Formations, inscriptions, formateurs, plannings, entreprises, candidatures, evaluations

package models

import (
	"bytes"
	"encoding/json"
	"time"
)

// Ref points at another record. The API returns either a bare id or a
// populated object, depending on the endpoint.
type Ref struct {
	ID    string `json:"_id"`
	Label string `json:"-"`
}

// UnmarshalJSON accepts "id-string" or {"_id": ..., "titre"|"nom": ...}
func (r *Ref) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = Ref{}
		return nil
	}
	if data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*r = Ref{ID: id}
		return nil
	}

	var obj struct {
		ID     string `json:"_id"`
		AltID  string `json:"id"`
		Titre  string `json:"titre"`
		Nom    string `json:"nom"`
		Prenom string `json:"prenom"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	r.ID = obj.ID
	if r.ID == "" {
		r.ID = obj.AltID
	}
	switch {
	case obj.Titre != "":
		r.Label = obj.Titre
	case obj.Prenom != "" && obj.Nom != "":
		r.Label = obj.Prenom + " " + obj.Nom
	default:
		r.Label = obj.Nom
	}
	return nil
}

// MarshalJSON writes the bare id, which is what write endpoints expect
func (r Ref) MarshalJSON() ([]byte, error) {
	if r.ID == "" {
		return []byte("null"), nil
	}
	return json.Marshal(r.ID)
}

// String returns the label when populated, else the id
func (r Ref) String() string {
	if r.Label != "" {
		return r.Label
	}
	return r.ID
}

// Formation is a training program offering
type Formation struct {
	ID          string    `json:"_id,omitempty"`
	Titre       string    `json:"titre"`
	Description string    `json:"description,omitempty"`
	Categorie   string    `json:"categorie,omitempty"`
	Ville       string    `json:"ville,omitempty"`
	Duree       int       `json:"duree,omitempty"`
	Prix        float64   `json:"prix,omitempty"`
	Places      int       `json:"places,omitempty"`
	DateDebut   time.Time `json:"dateDebut,omitzero"`
	DateFin     time.Time `json:"dateFin,omitzero"`
	Image       string    `json:"image,omitempty"`
	Statut      string    `json:"statut,omitempty"`
}

// Inscription statuses
const (
	InscriptionEnAttente = "EN_ATTENTE"
	InscriptionConfirmee = "CONFIRMEE"
	InscriptionAnnulee   = "ANNULEE"
)

// Inscription ties a learner to a formation
type Inscription struct {
	ID         string    `json:"_id,omitempty"`
	Formation  Ref       `json:"formation"`
	Nom        string    `json:"nom"`
	Prenom     string    `json:"prenom"`
	Email      string    `json:"email"`
	Telephone  string    `json:"telephone,omitempty"`
	Entreprise *Ref      `json:"entreprise,omitempty"`
	Statut     string    `json:"statut,omitempty"`
	Documents  []string  `json:"documents,omitempty"`
	CreatedAt  time.Time `json:"createdAt,omitzero"`
}

// StatusUpdate is the body of PUT /inscriptions/:id/status
type StatusUpdate struct {
	Statut string `json:"statut"`
}

// Formateur is a trainer
type Formateur struct {
	ID          string   `json:"_id,omitempty"`
	Nom         string   `json:"nom"`
	Prenom      string   `json:"prenom"`
	Email       string   `json:"email"`
	Telephone   string   `json:"telephone,omitempty"`
	Specialites []string `json:"specialites,omitempty"`
	CV          string   `json:"cv,omitempty"`
}

// Planning is a scheduled session of a formation
type Planning struct {
	ID        string    `json:"_id,omitempty"`
	Formation Ref       `json:"formation"`
	Formateur Ref       `json:"formateur"`
	DateDebut time.Time `json:"dateDebut,omitzero"`
	DateFin   time.Time `json:"dateFin,omitzero"`
	Lieu      string    `json:"lieu,omitempty"`
	Statut    string    `json:"statut,omitempty"`
}

// Entreprise is a client company
type Entreprise struct {
	ID        string `json:"_id,omitempty"`
	Nom       string `json:"nom"`
	Secteur   string `json:"secteur,omitempty"`
	Adresse   string `json:"adresse,omitempty"`
	Email     string `json:"email,omitempty"`
	Telephone string `json:"telephone,omitempty"`
	Contact   string `json:"contact,omitempty"`
}

// Candidature statuses
const (
	CandidatureEnAttente = "EN_ATTENTE"
	CandidatureAcceptee  = "ACCEPTEE"
	CandidatureRefusee   = "REFUSEE"
)

// Candidature is a trainer recruitment application
type Candidature struct {
	ID         string   `json:"_id,omitempty"`
	Nom        string   `json:"nom"`
	Prenom     string   `json:"prenom"`
	Email      string   `json:"email"`
	Telephone  string   `json:"telephone,omitempty"`
	Specialite string   `json:"specialite,omitempty"`
	Statut     string   `json:"statut,omitempty"`
	CV         string   `json:"cv,omitempty"`
	Documents  []string `json:"documents,omitempty"`
}

// Evaluation is post-session feedback
type Evaluation struct {
	ID          string         `json:"_id,omitempty"`
	Formation   Ref            `json:"formation"`
	Planning    *Ref           `json:"planning,omitempty"`
	Note        int            `json:"note"`
	Commentaire string         `json:"commentaire,omitempty"`
	Criteres    map[string]int `json:"criteres,omitempty"`
}

// EvaluationStats is the payload of GET /evaluations/stats
type EvaluationStats struct {
	Total       int            `json:"total"`
	Moyenne     float64        `json:"moyenne"`
	Repartition map[string]int `json:"repartition,omitempty"`
}
