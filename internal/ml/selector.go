package ml

// SelectBestModel picks a single model from how much voice data is present
// and how severe the clinical picture is. The first matching rule wins.
func SelectBestModel(fv FeatureVector) ModelID {
	voice := fv.VoiceFeatureCount()
	clinical := fv.ClinicalSum()

	switch {
	case voice >= 5:
		return ModelNeuralNetwork
	case voice >= 4 && clinical > 25:
		return ModelXGBoost
	case voice >= 2 && clinical > 20:
		return ModelGradientBoosting
	case clinical > 30:
		return ModelSVM
	default:
		return ModelRandomForest
	}
}
