package balance

// kgPerTonne is the only conversion between needed stock (kg) and production
// plans (t, t/ha).
const kgPerTonne = 1000

func tonnesToKg(t float64) float64 { return t * kgPerTonne }

func kgToTonnes(kg float64) float64 { return kg / kgPerTonne }
